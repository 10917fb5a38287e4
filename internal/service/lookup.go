package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/domain/models"
	"github.com/dsavchuk/eshop/internal/storage"
)

// LookupService — операции над справочниками типов и стран.
type LookupService interface {
	CreateType(ctx context.Context, name string) (*models.Type, error)
	ListTypes(ctx context.Context, involvedOnly bool) ([]*models.Type, error)
	CreateCountry(ctx context.Context, name string) (*models.Country, error)
	ListCountries(ctx context.Context, involvedOnly bool) ([]*models.Country, error)
}

type lookupService struct {
	log         *slog.Logger
	typeRepo    storage.TypeStorage
	countryRepo storage.CountryStorage
}

func NewLookupService(log *slog.Logger, typeRepo storage.TypeStorage, countryRepo storage.CountryStorage) LookupService {
	return &lookupService{
		log:         log,
		typeRepo:    typeRepo,
		countryRepo: countryRepo,
	}
}

func (s *lookupService) CreateType(ctx context.Context, name string) (*models.Type, error) {
	const op = "service.LookupService.CreateType"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Type name not specified")
	}
	t, err := s.typeRepo.CreateType(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrLookupExists) {
			return nil, apperr.Conflict("Type with this name already exists")
		}
		s.log.Error("failed to create type", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create type: %w", op, err)
	}
	return t, nil
}

func (s *lookupService) ListTypes(ctx context.Context, involvedOnly bool) ([]*models.Type, error) {
	const op = "service.LookupService.ListTypes"

	types, err := s.typeRepo.ListTypes(ctx, involvedOnly)
	if err != nil {
		s.log.Error("failed to list types", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list types: %w", op, err)
	}
	if types == nil {
		types = []*models.Type{}
	}
	return types, nil
}

func (s *lookupService) CreateCountry(ctx context.Context, name string) (*models.Country, error) {
	const op = "service.LookupService.CreateCountry"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Country name not specified")
	}
	c, err := s.countryRepo.CreateCountry(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrLookupExists) {
			return nil, apperr.Conflict("Country with this name already exists")
		}
		s.log.Error("failed to create country", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create country: %w", op, err)
	}
	return c, nil
}

func (s *lookupService) ListCountries(ctx context.Context, involvedOnly bool) ([]*models.Country, error) {
	const op = "service.LookupService.ListCountries"

	countries, err := s.countryRepo.ListCountries(ctx, involvedOnly)
	if err != nil {
		s.log.Error("failed to list countries", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list countries: %w", op, err)
	}
	if countries == nil {
		countries = []*models.Country{}
	}
	return countries, nil
}

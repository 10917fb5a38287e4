package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/dsavchuk/eshop/internal/domain/models"
)

var (
	ErrTypeNotFound    = errors.New("type not found")
	ErrCountryNotFound = errors.New("country not found")
	ErrLookupExists    = errors.New("lookup entry already exists")
)

// TypeStorage описывает методы для работы со справочником типов товаров.
type TypeStorage interface {
	CreateType(ctx context.Context, name string) (*models.Type, error)
	GetTypeByID(ctx context.Context, id int64) (*models.Type, error)
	// GetTypeByName ищет тип без учета регистра.
	GetTypeByName(ctx context.Context, name string) (*models.Type, error)
	// ListTypes при involvedOnly=true возвращает только типы, на которые
	// ссылается хотя бы один товар.
	ListTypes(ctx context.Context, involvedOnly bool) ([]*models.Type, error)
}

// CountryStorage описывает методы для работы со справочником стран.
type CountryStorage interface {
	CreateCountry(ctx context.Context, name string) (*models.Country, error)
	GetCountryByID(ctx context.Context, id int64) (*models.Country, error)
	GetCountryByName(ctx context.Context, name string) (*models.Country, error)
	ListCountries(ctx context.Context, involvedOnly bool) ([]*models.Country, error)
}

type typeRepository struct {
	db *sql.DB
}

func NewTypeRepository(db *sql.DB) TypeStorage {
	return &typeRepository{db: db}
}

func (r *typeRepository) CreateType(ctx context.Context, name string) (*models.Type, error) {
	t := &models.Type{Name: name}
	err := r.db.QueryRowContext(ctx, "INSERT INTO types (name) VALUES ($1) RETURNING id", name).Scan(&t.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pgUniqueViolation {
			return nil, ErrLookupExists
		}
		return nil, err
	}
	return t, nil
}

func (r *typeRepository) GetTypeByID(ctx context.Context, id int64) (*models.Type, error) {
	t := &models.Type{}
	row := r.db.QueryRowContext(ctx, "SELECT id, name FROM types WHERE id = $1", id)
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTypeNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *typeRepository) GetTypeByName(ctx context.Context, name string) (*models.Type, error) {
	t := &models.Type{}
	row := r.db.QueryRowContext(ctx, "SELECT id, name FROM types WHERE lower(name) = lower($1)", name)
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTypeNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *typeRepository) ListTypes(ctx context.Context, involvedOnly bool) ([]*models.Type, error) {
	query := "SELECT id, name FROM types ORDER BY id"
	if involvedOnly {
		query = "SELECT id, name FROM types WHERE id IN (SELECT DISTINCT type_id FROM products) ORDER BY id"
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*models.Type
	for rows.Next() {
		t := &models.Type{}
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

type countryRepository struct {
	db *sql.DB
}

func NewCountryRepository(db *sql.DB) CountryStorage {
	return &countryRepository{db: db}
}

func (r *countryRepository) CreateCountry(ctx context.Context, name string) (*models.Country, error) {
	c := &models.Country{Name: name}
	err := r.db.QueryRowContext(ctx, "INSERT INTO countries (name) VALUES ($1) RETURNING id", name).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pgUniqueViolation {
			return nil, ErrLookupExists
		}
		return nil, err
	}
	return c, nil
}

func (r *countryRepository) GetCountryByID(ctx context.Context, id int64) (*models.Country, error) {
	c := &models.Country{}
	row := r.db.QueryRowContext(ctx, "SELECT id, name FROM countries WHERE id = $1", id)
	if err := row.Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *countryRepository) GetCountryByName(ctx context.Context, name string) (*models.Country, error) {
	c := &models.Country{}
	row := r.db.QueryRowContext(ctx, "SELECT id, name FROM countries WHERE lower(name) = lower($1)", name)
	if err := row.Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCountryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *countryRepository) ListCountries(ctx context.Context, involvedOnly bool) ([]*models.Country, error) {
	query := "SELECT id, name FROM countries ORDER BY id"
	if involvedOnly {
		query = "SELECT id, name FROM countries WHERE id IN (SELECT DISTINCT country_id FROM products) ORDER BY id"
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []*models.Country
	for rows.Next() {
		c := &models.Country{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return countries, nil
}

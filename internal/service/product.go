package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/domain/models"
	"github.com/dsavchuk/eshop/internal/lib/slug"
	"github.com/dsavchuk/eshop/internal/storage"
)

// ImageStore — внешнее хранилище изображений товаров.
type ImageStore interface {
	Save(filename string, data io.Reader) error
	Remove(filename string) error
}

// ImageUpload — загружаемое изображение: расширение исходного файла и содержимое.
type ImageUpload struct {
	Ext  string
	Data io.Reader
}

// CreateProductInput — данные на создание товара. Type и Country принимают
// числовой идентификатор либо название без учета регистра.
type CreateProductInput struct {
	Name        string
	Alias       string // необязательный: при отсутствии база для алиаса — название
	Type        string
	Country     string
	Price       int
	Description string
}

// UpdateProductInput — частичное обновление: пустая строка означает
// «поле не передано». Цена передается указателем, чтобы отличать
// отсутствие поля от нулевого значения.
type UpdateProductInput struct {
	Name        string
	Type        string
	Country     string
	Price       *int
	Description string
	ClearImage  bool
}

// ListProductsInput — параметры выборки каталога.
type ListProductsInput struct {
	Type    string
	Country string
	Page    int
	Limit   int
	Skip    []int64
	Random  bool
}

// ProductPage — страница каталога с общим количеством записей под фильтром.
type ProductPage struct {
	Count int               `json:"count"`
	Rows  []*models.Product `json:"rows"`
}

type ProductService interface {
	Create(ctx context.Context, in CreateProductInput, image *ImageUpload) (*models.Product, error)
	Update(ctx context.Context, id int64, in UpdateProductInput, image *ImageUpload) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, in ListProductsInput) (*ProductPage, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetByAlias(ctx context.Context, alias string) (*models.Product, error)
}

type productService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	typeRepo    storage.TypeStorage
	countryRepo storage.CountryStorage
	images      ImageStore
}

func NewProductService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, typeRepo storage.TypeStorage, countryRepo storage.CountryStorage, images ImageStore) ProductService {
	return &productService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		typeRepo:    typeRepo,
		countryRepo: countryRepo,
		images:      images,
	}
}

// resolveTypeID принимает числовой ID либо название типа; 0 — не найден.
func (s *productService) resolveTypeID(ctx context.Context, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		if _, err := s.typeRepo.GetTypeByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrTypeNotFound) {
				return 0, nil
			}
			return 0, err
		}
		return id, nil
	}
	t, err := s.typeRepo.GetTypeByName(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrTypeNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return t.ID, nil
}

func (s *productService) resolveCountryID(ctx context.Context, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		if _, err := s.countryRepo.GetCountryByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrCountryNotFound) {
				return 0, nil
			}
			return 0, err
		}
		return id, nil
	}
	c, err := s.countryRepo.GetCountryByName(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrCountryNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return c.ID, nil
}

// Create добавляет товар в каталог. Алиас выводится на сервере: из явно
// переданного значения (оно сначала нормализуется), иначе из названия,
// и уникализируется в той же транзакции, что и вставка.
func (s *productService) Create(ctx context.Context, in CreateProductInput, image *ImageUpload) (*models.Product, error) {
	const op = "service.ProductService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("name", in.Name))

	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("Product name not specified")
	}
	typeID, err := s.resolveTypeID(ctx, in.Type)
	if err != nil {
		logger.Error("failed to resolve type", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to resolve type: %w", op, err)
	}
	if typeID == 0 {
		return nil, apperr.Validation("The specified type was not found (%s)", in.Type)
	}
	countryID, err := s.resolveCountryID(ctx, in.Country)
	if err != nil {
		logger.Error("failed to resolve country", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to resolve country: %w", op, err)
	}
	if countryID == 0 {
		return nil, apperr.Validation("The specified country was not found (%s)", in.Country)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	base := in.Name
	if strings.TrimSpace(in.Alias) != "" {
		base = in.Alias
	}
	alias, err := s.generateUniqueAlias(ctx, tx, base, slug.DefaultMaxLen)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to generate alias", slog.Any("error", err))
		if _, ok := apperr.Message(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("%s: failed to generate alias: %w", op, err)
	}

	product := &models.Product{
		Name:        in.Name,
		Alias:       alias,
		TypeID:      typeID,
		CountryID:   countryID,
		Price:       in.Price,
		Description: in.Description,
	}
	id, err := s.productRepo.CreateProduct(ctx, tx, product)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		// проигранная гонка за алиас или дубль названия — это конфликт уникальности,
		// наружу уходит как ошибка валидации
		if errors.Is(err, storage.ErrAliasTaken) {
			return nil, apperr.Conflict("Product alias is already taken")
		}
		if errors.Is(err, storage.ErrProductExists) {
			return nil, apperr.Conflict("Product with this name already exists")
		}
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	product.ID = id

	if image != nil {
		if err := s.attachImage(ctx, product, image); err != nil {
			logger.Error("failed to attach image", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to attach image: %w", op, err)
		}
	}

	logger.Info("product created", slog.Int64("productID", id), slog.String("alias", alias))
	return product, nil
}

// attachImage сохраняет файл под случайным именем и прописывает его товару.
func (s *productService) attachImage(ctx context.Context, product *models.Product, image *ImageUpload) error {
	filename := uuid.New().String() + image.Ext
	if err := s.images.Save(filename, image.Data); err != nil {
		return err
	}
	if err := s.productRepo.UpdateProductImage(ctx, product.ID, filename); err != nil {
		return err
	}
	product.Image = filename
	return nil
}

// Update меняет только переданные поля. Алиас при обновлении не
// пересчитывается: смена названия на него не каскадируется.
func (s *productService) Update(ctx context.Context, id int64, in UpdateProductInput, image *ImageUpload) (*models.Product, error) {
	const op = "service.ProductService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if id < 1 {
		return nil, apperr.Validation("Not valid ID")
	}
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, apperr.Validation("Record with ID %d not found", id)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Type != "" {
		typeID, err := s.resolveTypeID(ctx, in.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to resolve type: %w", op, err)
		}
		if typeID == 0 {
			return nil, apperr.Validation("The specified type (%s) was not found", in.Type)
		}
		product.TypeID = typeID
	}
	if in.Country != "" {
		countryID, err := s.resolveCountryID(ctx, in.Country)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to resolve country: %w", op, err)
		}
		if countryID == 0 {
			return nil, apperr.Validation("The specified country (%s) was not found", in.Country)
		}
		product.CountryID = countryID
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.ClearImage && product.Image != "" {
		if err := s.images.Remove(product.Image); err != nil {
			logger.Warn("failed to remove image file", slog.Any("error", err))
		}
		product.Image = ""
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, storage.ErrProductExists) {
			return nil, apperr.Conflict("Product with this name already exists")
		}
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update product: %w", op, err)
	}

	if image != nil {
		if product.Image != "" {
			if err := s.images.Remove(product.Image); err != nil {
				logger.Warn("failed to remove old image file", slog.Any("error", err))
			}
		}
		if err := s.attachImage(ctx, product, image); err != nil {
			logger.Error("failed to attach image", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to attach image: %w", op, err)
		}
	}

	logger.Info("product updated")
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	const op = "service.ProductService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if id < 1 {
		return apperr.Validation("Not valid ID")
	}
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return apperr.Validation("Product with ID %d not found", id)
		}
		return fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	if product.Image != "" {
		if err := s.images.Remove(product.Image); err != nil {
			logger.Warn("failed to remove image file", slog.Any("error", err))
		}
	}
	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete product: %w", op, err)
	}
	logger.Info("product deleted")
	return nil
}

// List отдает страницу каталога. Фильтр по неизвестному типу или стране
// просто не применяется, это не ошибка.
func (s *productService) List(ctx context.Context, in ListProductsInput) (*ProductPage, error) {
	const op = "service.ProductService.List"

	limit := in.Limit
	page := in.Page
	if page < 1 {
		page = 1
	}
	if limit == 0 && page > 1 {
		limit = 6
	}
	filter := storage.ProductFilter{
		Skip:   in.Skip,
		Limit:  limit,
		Random: in.Random,
	}
	if limit > 0 {
		filter.Offset = page*limit - limit
	}

	typeID, err := s.resolveTypeID(ctx, in.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve type: %w", op, err)
	}
	filter.TypeID = typeID
	countryID, err := s.resolveCountryID(ctx, in.Country)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve country: %w", op, err)
	}
	filter.CountryID = countryID

	products, total, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return &ProductPage{Count: total, Rows: products}, nil
}

func (s *productService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.ProductService.GetByID"

	if id < 1 {
		return nil, apperr.NotFound("Not valid ID")
	}
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, apperr.NotFound("No product found with the specified ID (%d)", id)
		}
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	return product, nil
}

func (s *productService) GetByAlias(ctx context.Context, alias string) (*models.Product, error) {
	const op = "service.ProductService.GetByAlias"

	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		return nil, apperr.NotFound("Not valid alias")
	}
	product, err := s.productRepo.GetProductByAlias(ctx, alias)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, apperr.NotFound("No product found with the specified alias (%s)", alias)
		}
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	return product, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/dsavchuk/eshop/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrAliasTaken      = errors.New("alias already taken")
	ErrProductExists   = errors.New("product already exists")
)

// код ошибки postgres для нарушения уникальности
const pgUniqueViolation = "23505"

// ProductFilter — параметры выборки каталога
type ProductFilter struct {
	TypeID    int64
	CountryID int64
	Skip      []int64 // идентификаторы, исключаемые из выборки
	Limit     int
	Offset    int
	Random    bool
}

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	// CreateProduct вставляет товар в рамках транзакции и возвращает его ID.
	CreateProduct(ctx context.Context, tx *sql.Tx, product *models.Product) (int64, error)
	// AliasExists проверяет занятость алиаса в рамках той же транзакции,
	// чтобы проба была согласована с незакоммиченными записями.
	AliasExists(ctx context.Context, tx *sql.Tx, alias string) (bool, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductByAlias(ctx context.Context, alias string) (*models.Product, error)
	// GetProductsByIDs возвращает товары одним пакетным запросом.
	GetProductsByIDs(ctx context.Context, ids []int64) ([]*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, int, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	UpdateProductImage(ctx context.Context, id int64, image string) error
	DeleteProduct(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, alias, type_id, country_id, price, description, image, created_at"

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	p := &models.Product{}
	var description, image sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Alias, &p.TypeID, &p.CountryID, &p.Price, &description, &image, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Image = image.String
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, tx *sql.Tx, product *models.Product) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO products (name, alias, type_id, country_id, price, description, image, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id`,
		product.Name, product.Alias, product.TypeID, product.CountryID, product.Price,
		nullable(product.Description), nullable(product.Image),
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pgUniqueViolation {
			// уникальный индекс БД — источник истины для names/alias,
			// проигравшая гонку вставка отдается наверх как конфликт
			if strings.Contains(pqErr.Constraint, "alias") {
				return 0, ErrAliasTaken
			}
			return 0, ErrProductExists
		}
		return 0, err
	}
	return id, nil
}

func (r *productRepository) AliasExists(ctx context.Context, tx *sql.Tx, alias string) (bool, error) {
	var exists bool
	row := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE alias = $1)", alias)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) GetProductByAlias(ctx context.Context, alias string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE alias = $1", alias)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []int64) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProducts возвращает страницу каталога и общее количество записей под фильтром.
func (r *productRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, int, error) {
	var conds []string
	var args []any
	if filter.TypeID != 0 {
		args = append(args, filter.TypeID)
		conds = append(conds, fmt.Sprintf("type_id = $%d", len(args)))
	}
	if filter.CountryID != 0 {
		args = append(args, filter.CountryID)
		conds = append(conds, fmt.Sprintf("country_id = $%d", len(args)))
	}
	if len(filter.Skip) > 0 {
		args = append(args, pq.Array(filter.Skip))
		conds = append(conds, fmt.Sprintf("id <> ALL($%d)", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY created_at DESC"
	if filter.Random {
		order = " ORDER BY RANDOM()"
	}
	query := "SELECT " + productColumns + " FROM products" + where + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// UpdateProduct сохраняет изменяемые поля товара. Алиас намеренно не входит
// в запрос: после создания он меняется только вместе с пересозданием записи.
func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $1, type_id = $2, country_id = $3, price = $4, description = $5, image = $6 WHERE id = $7`,
		product.Name, product.TypeID, product.CountryID, product.Price,
		nullable(product.Description), nullable(product.Image), product.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pgUniqueViolation {
			return ErrProductExists
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) UpdateProductImage(ctx context.Context, id int64, image string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET image = $1 WHERE id = $2", nullable(image), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// пустая строка хранится как NULL
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

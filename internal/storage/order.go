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

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ в рамках транзакции и возвращает его ID.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	// CreateOrderItems вставляет позиции заказа одним запросом в той же транзакции,
	// что и сам заказ: либо записывается все, либо ничего.
	CreateOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []*models.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// UpdateOrderStatus перезаписывает статус без проверки допустимости перехода.
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	// ListOrders возвращает страницу заказов (новые первыми) с вложенными товарами
	// и общее количество заказов.
	ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, int, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, name, email, address, phone, comment, status, total_price, created_at"

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	o := &models.Order{}
	var comment sql.NullString
	if err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Address, &o.Phone, &comment, &o.Status, &o.TotalPrice, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Comment = comment.String
	return o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (name, email, address, phone, comment, status, total_price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id, created_at`,
		order.Name, order.Email, order.Address, order.Phone,
		nullable(order.Comment), order.Status, order.TotalPrice,
	).Scan(&id, &order.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []*models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*3)
	for i, item := range items {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		args = append(args, orderID, item.ProductID, item.Count)
	}
	query := "INSERT INTO order_products (order_id, product_id, count) VALUES " + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + " FROM orders ORDER BY id DESC"
	var args []any
	if limit > 0 {
		args = append(args, limit, offset)
		query += " LIMIT $1 OFFSET $2"
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[int64]*models.Order)
	var ids []int64
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return orders, total, nil
	}

	// подтягиваем позиции и товары вторым запросом
	itemRows, err := r.db.QueryContext(ctx, `
		SELECT op.order_id, p.id, p.name, p.alias, p.price, p.image, op.count
		FROM order_products op
		JOIN products p ON op.product_id = p.id
		WHERE op.order_id = ANY($1)
		ORDER BY op.id`, pq.Array(ids))
	if err != nil {
		return nil, 0, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		item := &models.OrderedProduct{}
		var image sql.NullString
		if err := itemRows.Scan(&orderID, &item.ID, &item.Name, &item.Alias, &item.Price, &image, &item.Count); err != nil {
			return nil, 0, err
		}
		item.Image = image.String
		if order, ok := byID[orderID]; ok {
			order.Products = append(order.Products, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

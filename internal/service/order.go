package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/domain/models"
	"github.com/dsavchuk/eshop/internal/storage"
)

// OrderService определяет операции над заказами: прием заявки,
// смена статуса администратором и постраничный список.
type OrderService interface {
	Create(ctx context.Context, sub *OrderSubmission) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error)
	List(ctx context.Context, page, limit int) (*OrderPage, error)
}

// OrderPage — страница заказов с общим количеством записей.
type OrderPage struct {
	Count int             `json:"count"`
	Rows  []*models.Order `json:"rows"`
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	productRepo storage.ProductStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, productRepo storage.ProductStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// Create принимает заявку на заказ: применяет пофазную валидацию, сверяет
// заявленную сумму с пересчитанной по ценам каталога и записывает заказ
// вместе с позициями в одной транзакции. Клиент может заявить любую сумму,
// но запись происходит только если она воспроизводится из данных сервера.
func (s *orderService) Create(ctx context.Context, sub *OrderSubmission) (*models.Order, error) {
	const op = "service.OrderService.Create"
	logger := s.log.With(slog.String("op", op))

	if err := validateOrderFields(sub); err != nil {
		logger.Warn("order rejected by field rules", slog.Any("error", err))
		return nil, err
	}

	if len(sub.Products) == 0 {
		return nil, apperr.Validation("Products are missing from the order")
	}
	// дубликаты отсекаются до обращения к каталогу
	seen := make(map[int64]struct{}, len(sub.Products))
	ids := make([]int64, 0, len(sub.Products))
	for _, item := range sub.Products {
		if _, ok := seen[item.ProductID]; ok {
			return nil, apperr.Validation("There are duplicates in the list of products")
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	// цены берутся из каталога одним пакетным запросом
	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to load products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load products: %w", op, err)
	}
	byID := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	totalPrice := 0
	for _, item := range sub.Products {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, apperr.Validation("Product with ID %d not found", item.ProductID)
		}
		totalPrice += product.Price * item.Count
	}
	if totalPrice != sub.TotalPrice {
		logger.Warn("total price mismatch",
			slog.Int("declared", sub.TotalPrice),
			slog.Int("computed", totalPrice),
		)
		return nil, apperr.Validation("Not valid order total price")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order := &models.Order{
		Name:       sub.Name,
		Email:      sub.Email,
		Address:    sub.Address,
		Phone:      sub.Phone,
		Comment:    sub.Comment,
		Status:     models.OrderStatusNew,
		TotalPrice: totalPrice,
	}
	orderID, err := s.orderRepo.CreateOrder(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	items := make([]*models.OrderItem, 0, len(sub.Products))
	for _, item := range sub.Products {
		items = append(items, &models.OrderItem{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Count:     item.Count,
		})
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, orderID, items); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order items: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	order.ID = orderID
	logger.Info("order created", slog.Int64("orderID", orderID), slog.Int("totalPrice", totalPrice))
	return order, nil
}

// UpdateStatus перезаписывает статус заказа без проверки допустимости перехода.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id), slog.String("status", status))

	if id < 1 {
		return nil, apperr.Validation("Not valid ID.")
	}
	// статус проверяется до записи: CHECK-ограничение в базе осталось бы
	// необработанной ошибкой драйвера
	if !models.ValidOrderStatus(status) {
		return nil, apperr.Validation("Not valid status")
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, apperr.Validation("Order with ID %d not found", id)
		}
		logger.Error("failed to update order status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update order status: %w", op, err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		logger.Error("failed to reload order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to reload order: %w", op, err)
	}
	logger.Info("order status updated")
	return order, nil
}

func (s *orderService) List(ctx context.Context, page, limit int) (*OrderPage, error) {
	const op = "service.OrderService.List"

	offset := 0
	if limit > 0 && page > 1 {
		offset = (page - 1) * limit
	}
	orders, total, err := s.orderRepo.ListOrders(ctx, limit, offset)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return &OrderPage{Count: total, Rows: orders}, nil
}

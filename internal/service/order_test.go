package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/domain/models"
	"github.com/dsavchuk/eshop/internal/storage"
)

func catalogOf(products ...*models.Product) *fakeProductStorage {
	return &fakeProductStorage{
		getProductsByIDsFn: func(ctx context.Context, ids []int64) ([]*models.Product, error) {
			var found []*models.Product
			for _, p := range products {
				for _, id := range ids {
					if p.ID == id {
						found = append(found, p)
					}
				}
			}
			return found, nil
		},
	}
}

func TestOrderService_Create_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	productRepo := catalogOf(
		&models.Product{ID: 1, Name: "Чай зеленый", Price: 1},
		&models.Product{ID: 2, Name: "Чай черный", Price: 2},
	)
	createdAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	var gotItems []*models.OrderItem
	orderRepo := &fakeOrderStorage{
		createOrderFn: func(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
			order.CreatedAt = createdAt
			return 42, nil
		},
		createOrderItemsFn: func(ctx context.Context, tx *sql.Tx, orderID int64, items []*models.OrderItem) error {
			assert.Equal(t, int64(42), orderID)
			gotItems = items
			return nil
		},
	}
	svc := NewOrderService(newTestLogger(), db, orderRepo, productRepo)

	sub := validSubmission()
	// 1*10 + 2*10
	sub.TotalPrice = 30

	order, err := svc.Create(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, 30, order.TotalPrice)
	assert.Equal(t, createdAt, order.CreatedAt)
	require.Len(t, gotItems, 2)
	assert.Equal(t, 10, gotItems[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_Create_TotalPriceMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	productRepo := catalogOf(
		&models.Product{ID: 1, Price: 1},
		&models.Product{ID: 2, Price: 2},
	)
	orderRepo := &fakeOrderStorage{}
	svc := NewOrderService(newTestLogger(), db, orderRepo, productRepo)

	sub := validSubmission()
	sub.TotalPrice = 25

	_, err = svc.Create(context.Background(), sub)
	require.Error(t, err)
	assert.EqualError(t, err, "Not valid order total price")
	assert.Equal(t, 400, apperr.Status(err))
	// до транзакции дело не дошло
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_Create_EmptyProducts(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewOrderService(newTestLogger(), db, &fakeOrderStorage{}, &fakeProductStorage{})

	sub := validSubmission()
	sub.Products = nil

	_, err = svc.Create(context.Background(), sub)
	require.Error(t, err)
	assert.EqualError(t, err, "Products are missing from the order")
}

// дубликаты отсекаются до обращения к каталогу
func TestOrderService_Create_DuplicatesBeforeCatalogLookup(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	productRepo := catalogOf(&models.Product{ID: 1, Price: 1})
	svc := NewOrderService(newTestLogger(), db, &fakeOrderStorage{}, productRepo)

	sub := validSubmission()
	sub.Products = []LineItemRequest{{ProductID: 1, Count: 1}, {ProductID: 1, Count: 2}}

	_, err = svc.Create(context.Background(), sub)
	require.Error(t, err)
	assert.EqualError(t, err, "There are duplicates in the list of products")
	assert.Empty(t, productRepo.calls, "catalog must not be queried when duplicates are present")
}

func TestOrderService_Create_UnknownProduct(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	productRepo := catalogOf(&models.Product{ID: 1, Price: 1})
	svc := NewOrderService(newTestLogger(), db, &fakeOrderStorage{}, productRepo)

	sub := validSubmission()
	sub.Products = []LineItemRequest{{ProductID: 1, Count: 1}, {ProductID: 777, Count: 1}}

	_, err = svc.Create(context.Background(), sub)
	require.Error(t, err)
	assert.EqualError(t, err, "Product with ID 777 not found")
}

// заявка с нарушением полевого правила не доходит до каталога
func TestOrderService_Create_FieldRuleRejected(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	productRepo := catalogOf(&models.Product{ID: 1, Price: 1})
	svc := NewOrderService(newTestLogger(), db, &fakeOrderStorage{}, productRepo)

	sub := validSubmission()
	sub.Email = "broken"

	_, err = svc.Create(context.Background(), sub)
	require.Error(t, err)
	assert.EqualError(t, err, "The email is not valid")
	assert.Empty(t, productRepo.calls)
}

func TestOrderService_UpdateStatus_Success(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orderRepo := &fakeOrderStorage{
		updateOrderStatusFn: func(ctx context.Context, id int64, status string) error {
			assert.Equal(t, int64(7), id)
			assert.Equal(t, models.OrderStatusExecuted, status)
			return nil
		},
		getOrderByIDFn: func(ctx context.Context, id int64) (*models.Order, error) {
			return &models.Order{ID: id, Status: models.OrderStatusExecuted}, nil
		},
	}
	svc := NewOrderService(newTestLogger(), db, orderRepo, &fakeProductStorage{})

	order, err := svc.UpdateStatus(context.Background(), 7, models.OrderStatusExecuted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusExecuted, order.Status)
}

func TestOrderService_UpdateStatus_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewOrderService(newTestLogger(), db, &fakeOrderStorage{}, &fakeProductStorage{})

	_, err = svc.UpdateStatus(context.Background(), 0, models.OrderStatusNew)
	assert.EqualError(t, err, "Not valid ID.")

	_, err = svc.UpdateStatus(context.Background(), 5, "")
	assert.EqualError(t, err, "Not valid status")
}

// статус вне допустимого набора отклоняется до обращения к базе
func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orderRepo := &fakeOrderStorage{
		updateOrderStatusFn: func(ctx context.Context, id int64, status string) error {
			t.Fatal("repository must not be called for an unknown status")
			return nil
		},
	}
	svc := NewOrderService(newTestLogger(), db, orderRepo, &fakeProductStorage{})

	_, err = svc.UpdateStatus(context.Background(), 7, "SHIPPED")
	require.Error(t, err)
	assert.EqualError(t, err, "Not valid status")
	assert.Equal(t, 400, apperr.Status(err))
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orderRepo := &fakeOrderStorage{
		updateOrderStatusFn: func(ctx context.Context, id int64, status string) error {
			return storage.ErrOrderNotFound
		},
	}
	svc := NewOrderService(newTestLogger(), db, orderRepo, &fakeProductStorage{})

	_, err = svc.UpdateStatus(context.Background(), 99, models.OrderStatusRejected)
	require.Error(t, err)
	assert.EqualError(t, err, "Order with ID 99 not found")
}

func TestOrderService_List(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orderRepo := &fakeOrderStorage{
		listOrdersFn: func(ctx context.Context, limit, offset int) ([]*models.Order, int, error) {
			assert.Equal(t, 10, limit)
			assert.Equal(t, 20, offset)
			return []*models.Order{{ID: 3}, {ID: 2}}, 25, nil
		},
	}
	svc := NewOrderService(newTestLogger(), db, orderRepo, &fakeProductStorage{})

	page, err := svc.List(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, page.Count)
	assert.Len(t, page.Rows, 2)
}

package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/dsavchuk/eshop/internal/domain/models"
	"github.com/dsavchuk/eshop/internal/storage"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Подменные репозитории: поведение задается функциями-полями,
// незаданный метод означает, что тест его не ожидает.

type fakeProductStorage struct {
	createProductFn      func(ctx context.Context, tx *sql.Tx, product *models.Product) (int64, error)
	aliasExistsFn        func(ctx context.Context, tx *sql.Tx, alias string) (bool, error)
	getProductByIDFn     func(ctx context.Context, id int64) (*models.Product, error)
	getProductByAliasFn  func(ctx context.Context, alias string) (*models.Product, error)
	getProductsByIDsFn   func(ctx context.Context, ids []int64) ([]*models.Product, error)
	listProductsFn       func(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, int, error)
	updateProductFn      func(ctx context.Context, product *models.Product) error
	updateProductImageFn func(ctx context.Context, id int64, image string) error
	deleteProductFn      func(ctx context.Context, id int64) error

	// журнал вызовов для проверки порядка обращений
	calls []string
}

func (f *fakeProductStorage) CreateProduct(ctx context.Context, tx *sql.Tx, product *models.Product) (int64, error) {
	f.calls = append(f.calls, "CreateProduct")
	return f.createProductFn(ctx, tx, product)
}

func (f *fakeProductStorage) AliasExists(ctx context.Context, tx *sql.Tx, alias string) (bool, error) {
	f.calls = append(f.calls, "AliasExists")
	return f.aliasExistsFn(ctx, tx, alias)
}

func (f *fakeProductStorage) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	f.calls = append(f.calls, "GetProductByID")
	return f.getProductByIDFn(ctx, id)
}

func (f *fakeProductStorage) GetProductByAlias(ctx context.Context, alias string) (*models.Product, error) {
	f.calls = append(f.calls, "GetProductByAlias")
	return f.getProductByAliasFn(ctx, alias)
}

func (f *fakeProductStorage) GetProductsByIDs(ctx context.Context, ids []int64) ([]*models.Product, error) {
	f.calls = append(f.calls, "GetProductsByIDs")
	return f.getProductsByIDsFn(ctx, ids)
}

func (f *fakeProductStorage) ListProducts(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, int, error) {
	f.calls = append(f.calls, "ListProducts")
	return f.listProductsFn(ctx, filter)
}

func (f *fakeProductStorage) UpdateProduct(ctx context.Context, product *models.Product) error {
	f.calls = append(f.calls, "UpdateProduct")
	return f.updateProductFn(ctx, product)
}

func (f *fakeProductStorage) UpdateProductImage(ctx context.Context, id int64, image string) error {
	f.calls = append(f.calls, "UpdateProductImage")
	return f.updateProductImageFn(ctx, id, image)
}

func (f *fakeProductStorage) DeleteProduct(ctx context.Context, id int64) error {
	f.calls = append(f.calls, "DeleteProduct")
	return f.deleteProductFn(ctx, id)
}

type fakeOrderStorage struct {
	createOrderFn       func(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	createOrderItemsFn  func(ctx context.Context, tx *sql.Tx, orderID int64, items []*models.OrderItem) error
	getOrderByIDFn      func(ctx context.Context, id int64) (*models.Order, error)
	updateOrderStatusFn func(ctx context.Context, id int64, status string) error
	listOrdersFn        func(ctx context.Context, limit, offset int) ([]*models.Order, int, error)
}

func (f *fakeOrderStorage) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	return f.createOrderFn(ctx, tx, order)
}

func (f *fakeOrderStorage) CreateOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []*models.OrderItem) error {
	return f.createOrderItemsFn(ctx, tx, orderID, items)
}

func (f *fakeOrderStorage) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return f.getOrderByIDFn(ctx, id)
}

func (f *fakeOrderStorage) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	return f.updateOrderStatusFn(ctx, id, status)
}

func (f *fakeOrderStorage) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, int, error) {
	return f.listOrdersFn(ctx, limit, offset)
}

type fakeTypeStorage struct {
	createTypeFn    func(ctx context.Context, name string) (*models.Type, error)
	getTypeByIDFn   func(ctx context.Context, id int64) (*models.Type, error)
	getTypeByNameFn func(ctx context.Context, name string) (*models.Type, error)
	listTypesFn     func(ctx context.Context, involvedOnly bool) ([]*models.Type, error)
}

func (f *fakeTypeStorage) CreateType(ctx context.Context, name string) (*models.Type, error) {
	return f.createTypeFn(ctx, name)
}

func (f *fakeTypeStorage) GetTypeByID(ctx context.Context, id int64) (*models.Type, error) {
	return f.getTypeByIDFn(ctx, id)
}

func (f *fakeTypeStorage) GetTypeByName(ctx context.Context, name string) (*models.Type, error) {
	return f.getTypeByNameFn(ctx, name)
}

func (f *fakeTypeStorage) ListTypes(ctx context.Context, involvedOnly bool) ([]*models.Type, error) {
	return f.listTypesFn(ctx, involvedOnly)
}

type fakeCountryStorage struct {
	createCountryFn    func(ctx context.Context, name string) (*models.Country, error)
	getCountryByIDFn   func(ctx context.Context, id int64) (*models.Country, error)
	getCountryByNameFn func(ctx context.Context, name string) (*models.Country, error)
	listCountriesFn    func(ctx context.Context, involvedOnly bool) ([]*models.Country, error)
}

func (f *fakeCountryStorage) CreateCountry(ctx context.Context, name string) (*models.Country, error) {
	return f.createCountryFn(ctx, name)
}

func (f *fakeCountryStorage) GetCountryByID(ctx context.Context, id int64) (*models.Country, error) {
	return f.getCountryByIDFn(ctx, id)
}

func (f *fakeCountryStorage) GetCountryByName(ctx context.Context, name string) (*models.Country, error) {
	return f.getCountryByNameFn(ctx, name)
}

func (f *fakeCountryStorage) ListCountries(ctx context.Context, involvedOnly bool) ([]*models.Country, error) {
	return f.listCountriesFn(ctx, involvedOnly)
}

type fakeUserStorage struct {
	createUserFn      func(ctx context.Context, user *models.User) (*models.User, error)
	getUserByIDFn     func(ctx context.Context, id int64) (*models.User, error)
	userExistsFn      func(ctx context.Context, username, email string) (bool, error)
	getAdminByLoginFn func(ctx context.Context, username, email string) (*models.User, error)
}

func (f *fakeUserStorage) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	return f.createUserFn(ctx, user)
}

func (f *fakeUserStorage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return f.getUserByIDFn(ctx, id)
}

func (f *fakeUserStorage) UserExists(ctx context.Context, username, email string) (bool, error) {
	return f.userExistsFn(ctx, username, email)
}

func (f *fakeUserStorage) GetAdminByLogin(ctx context.Context, username, email string) (*models.User, error) {
	return f.getAdminByLoginFn(ctx, username, email)
}

type fakeImageStore struct {
	saved   []string
	removed []string
}

func (f *fakeImageStore) Save(filename string, data io.Reader) error {
	f.saved = append(f.saved, filename)
	return nil
}

func (f *fakeImageStore) Remove(filename string) error {
	f.removed = append(f.removed, filename)
	return nil
}

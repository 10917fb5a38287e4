package models

import "time"

// Статусы заказа. Новый заказ всегда создается со статусом NEW,
// дальнейшие переходы выполняются явно администратором.
const (
	OrderStatusNew       = "NEW"
	OrderStatusInProcess = "IN_PROCESS"
	OrderStatusExecuted  = "EXECUTED"
	OrderStatusRejected  = "REJECTED"
)

// ValidOrderStatus сообщает, входит ли статус в допустимый набор.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusNew, OrderStatusInProcess, OrderStatusExecuted, OrderStatusRejected:
		return true
	}
	return false
}

// Order представляет заказ покупателя
type Order struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	Comment    string    `json:"comment,omitempty"`
	Status     string    `json:"status"`
	TotalPrice int       `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`

	// Products заполняется при выборке заказов с позициями
	Products []*OrderedProduct `json:"products,omitempty"`
}

// OrderItem представляет позицию заказа (пара товар-количество),
// создается атомарно вместе с заказом
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	Count     int   `json:"count"`
}

// OrderedProduct — товар внутри заказа вместе с количеством,
// заполняется через JOIN с таблицей products
type OrderedProduct struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
	Price int    `json:"price"`
	Image string `json:"image,omitempty"`
	Count int    `json:"count"`
}

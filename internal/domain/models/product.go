package models

import "time"

// Product представляет товар каталога
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`    // Название товара (уникальное)
	Alias       string    `json:"alias"`   // URL-безопасный идентификатор (уникальный)
	TypeID      int64     `json:"typeId"`
	CountryID   int64     `json:"countryId"`
	Price       int       `json:"price"` // Цена в минимальных единицах валюты
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

package models

// Type представляет тип товара (справочная таблица)
type Type struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Country представляет страну происхождения товара (справочная таблица)
type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

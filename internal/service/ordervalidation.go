package service

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dsavchuk/eshop/internal/apperr"
)

// OrderSubmission — проверенные данные заявки на заказ.
type OrderSubmission struct {
	Name       string
	Phone      string
	Email      string
	Address    string
	Comment    string
	HasComment bool
	TotalPrice int
	Products   []LineItemRequest
}

// LineItemRequest — одна позиция заявки: товар и количество.
type LineItemRequest struct {
	ProductID int64
	Count     int
}

// сырые структуры для строгой проверки формы: указатели отличают
// отсутствующее поле от пустого значения
type rawOrderPayload struct {
	Name       *string        `json:"name"`
	Phone      *string        `json:"phone"`
	Email      *string        `json:"email"`
	Address    *string        `json:"address"`
	Comment    *string        `json:"comment"`
	TotalPrice *int           `json:"totalPrice"`
	Products   *[]rawLineItem `json:"products"`
}

type rawLineItem struct {
	ProductID *int64 `json:"productId"`
	Count     *int   `json:"count"`
}

// DecodeOrderSubmission выполняет фазу проверки формы: JSON-объект без
// неизвестных ключей, обязательные поля нужных типов, products — массив
// объектов ровно из двух числовых полей. Любое нарушение формы дает
// одну и ту же ошибку валидации.
func DecodeOrderSubmission(r io.Reader) (*OrderSubmission, error) {
	shapeErr := apperr.Validation("Received not valid data")

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var raw rawOrderPayload
	if err := dec.Decode(&raw); err != nil {
		return nil, shapeErr
	}
	// за первым объектом не должно быть ничего, кроме EOF
	if dec.More() {
		return nil, shapeErr
	}

	if raw.Name == nil || raw.Phone == nil || raw.Email == nil || raw.Address == nil ||
		raw.TotalPrice == nil || raw.Products == nil {
		return nil, shapeErr
	}

	sub := &OrderSubmission{
		Name:       *raw.Name,
		Phone:      *raw.Phone,
		Email:      *raw.Email,
		Address:    *raw.Address,
		TotalPrice: *raw.TotalPrice,
	}
	if raw.Comment != nil {
		sub.Comment = *raw.Comment
		sub.HasComment = true
	}
	for _, item := range *raw.Products {
		if item.ProductID == nil || item.Count == nil {
			return nil, shapeErr
		}
		sub.Products = append(sub.Products, LineItemRequest{ProductID: *item.ProductID, Count: *item.Count})
	}
	return sub, nil
}

var (
	// необязательный ведущий '+', от 7 до 15 цифр, произвольные нецифровые разделители
	phoneRe = regexp.MustCompile(`^\+?(?:\D*\d){7,15}\D*$`)
	emailRe = regexp.MustCompile(`^(?i)[A-Z0-9._%+-]+@(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,}$`)
)

// правило проверки одного поля: возвращает текст нарушения или пустую строку
type fieldRule struct {
	field string
	check func(o *OrderSubmission) string
}

// Правила применяются по порядку, проверка останавливается
// на первом нарушении — его текст и уходит клиенту.
var orderRules = []fieldRule{
	{field: "name", check: func(o *OrderSubmission) string {
		if utf8.RuneCountInString(strings.TrimSpace(o.Name)) < 4 {
			return "The name must consist of at least 4 characters"
		}
		return ""
	}},
	{field: "phone", check: func(o *OrderSubmission) string {
		if strings.TrimSpace(o.Phone) == "" {
			return "You must provide a phone number"
		}
		if !phoneRe.MatchString(o.Phone) {
			return "The phone is not valid"
		}
		return ""
	}},
	{field: "email", check: func(o *OrderSubmission) string {
		if strings.TrimSpace(o.Email) == "" {
			return "You must provide an email address"
		}
		// две точки подряд недопустимы, остальное проверяет шаблон
		if strings.Contains(o.Email, "..") || !emailRe.MatchString(o.Email) {
			return "The email is not valid"
		}
		return ""
	}},
	{field: "address", check: func(o *OrderSubmission) string {
		if utf8.RuneCountInString(strings.TrimSpace(o.Address)) < 6 {
			return "The address must consist of at least 6 characters"
		}
		return ""
	}},
	{field: "comment", check: func(o *OrderSubmission) string {
		if o.HasComment && utf8.RuneCountInString(strings.TrimSpace(o.Comment)) > 150 {
			return "The value of the comment field is too long"
		}
		return ""
	}},
	{field: "totalPrice", check: func(o *OrderSubmission) string {
		if o.TotalPrice <= 0 {
			return "Not valid total price"
		}
		return ""
	}},
	{field: "products", check: func(o *OrderSubmission) string {
		for _, item := range o.Products {
			if item.ProductID < 1 || item.Count < 1 {
				return "Received not valid data"
			}
		}
		return ""
	}},
}

// validateOrderFields применяет правила к уже проверенной по форме заявке.
func validateOrderFields(o *OrderSubmission) error {
	for _, rule := range orderRules {
		if msg := rule.check(o); msg != "" {
			return apperr.Validation("%s", msg)
		}
	}
	return nil
}

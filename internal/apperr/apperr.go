package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Категории ошибок, которые сервисы отдают наружу.
// Сообщение такой ошибки безопасно показывать клиенту,
// все остальные ошибки на границе превращаются в generic 500.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

func Validation(format string, args ...any) error {
	return &Error{kind: ErrValidation, message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{kind: ErrNotFound, message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &Error{kind: ErrUnauthorized, message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{kind: ErrConflict, message: fmt.Sprintf(format, args...)}
}

// Message возвращает сообщение для клиента, если ошибка относится к известной категории.
// Работает и для обернутых ошибок.
func Message(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.message, true
	}
	return "", false
}

// Status возвращает HTTP-статус для ошибки.
// Конфликт уникальности отдается как 400: для клиента это ошибка валидации.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

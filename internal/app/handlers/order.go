package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/service"
)

var validate = validator.New()

// CreateOrderHandler принимает заявку на заказ с сайта (без авторизации)
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		// разбор и проверка формы выполняются сервисом: сообщения об ошибках
		// зависят от порядка правил
		sub, err := service.DecodeOrderSubmission(r.Body)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		order, err := orderService.Create(r.Context(), sub)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}

// UpdateOrderRequest — смена статуса заказа администратором
type UpdateOrderRequest struct {
	ID     int64  `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

func UpdateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req UpdateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Not valid ID."))
			return
		}
		if err := validate.Struct(req); err != nil {
			if req.ID < 1 {
				writeError(w, logger, apperr.Validation("Not valid ID."))
				return
			}
			writeError(w, logger, apperr.Validation("Not valid status"))
			return
		}

		order, err := orderService.UpdateStatus(r.Context(), req.ID, req.Status)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}

func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		pageData, err := orderService.List(r.Context(), page, limit)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, pageData)
	}
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dsavchuk/eshop/internal/apperr"
)

// errorResponse — единый формат тела ошибки
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeError переводит ошибку сервиса в HTTP-ответ: известные ошибки
// уходят с их сообщением и статусом, остальные прячутся за 500.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	if msg, ok := apperr.Message(err); ok {
		writeJSON(w, log, apperr.Status(err), errorResponse{Message: msg})
		return
	}
	log.Error("internal error", slog.Any("error", err))
	writeJSON(w, log, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
}

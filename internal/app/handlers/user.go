package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/service"
)

// CreateUserRequest — регистрация пользователя администратором
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

func CreateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Please provide all the details"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, logger, apperr.Validation("Please provide all the details"))
			return
		}

		user, err := userService.Create(r.Context(), req.Username, req.Email, req.Password, req.Role)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, user)
	}
}

// SignInRequest — вход администратора по имени пользователя или почте
type SignInRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"required_without=Username"`
	Password string `json:"password" validate:"required"`
}

func SignInHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignInHandler"
		logger := log.With(slog.String("op", op))

		var req SignInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Not all data is provided"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, logger, apperr.Validation("Not all data is provided"))
			return
		}

		result, err := userService.SignIn(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, result)
	}
}

// RefreshRequest — перевыпуск токена по еще действующему
type RefreshRequest struct {
	Token string `json:"token"`
}

// RefreshResponse содержит только новый токен
type RefreshResponse struct {
	Token string `json:"token"`
}

func RefreshHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RefreshHandler"
		logger := log.With(slog.String("op", op))

		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, apperr.Unauthorized("Token not specified"))
			return
		}

		token, err := userService.Refresh(r.Context(), req.Token)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, RefreshResponse{Token: token})
	}
}

func GetUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, apperr.Validation("Not valid ID"))
			return
		}
		user, err := userService.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, user)
	}
}

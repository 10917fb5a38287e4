package jwtmiddleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	security "github.com/dsavchuk/eshop/internal/jwt-new"
)

type contextKey string

const ClaimsKey contextKey = "tokenClaims"

// NewJWTMiddleware создает middleware для проверки JWT на мутирующих эндпоинтах.
func NewJWTMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "please provide a valid Authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := security.Verify(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					http.Error(w, "the token has expired", http.StatusUnauthorized)
					return
				}
				http.Error(w, "token is not valid", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext извлекает данные токена из контекста.
func FromContext(ctx context.Context) (*security.TokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*security.TokenClaims)
	return claims, ok
}

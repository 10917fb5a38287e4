package security

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims — полезная нагрузка токена доступа.
type TokenClaims struct {
	UserID   int64
	Username string
}

// NewToken генерирует JWT для пользователя с заданным временем жизни
// и возвращает подписанный токен вместе с моментом истечения (unix).
func NewToken(userID int64, username string, ttl time.Duration) (string, int64, error) {
	exp := time.Now().Add(ttl).Unix()
	claims := jwt.MapClaims{
		"id":       userID,
		"username": username,
		"exp":      exp,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return "", 0, errors.New("JWT_SECRET environment variable is not set")
	}
	signed, err := token.SignedString([]byte(secretStr))
	if err != nil {
		return "", 0, err
	}
	return signed, exp, nil
}

// Verify разбирает и проверяет токен; истекший токен отдается
// как ошибка jwt.ErrTokenExpired.
func Verify(tokenStr string) (*TokenClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Проверка алгоритма
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid token claims: id not found")
	}
	username, ok := claims["username"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims: username not found")
	}
	return &TokenClaims{UserID: int64(id), Username: username}, nil
}

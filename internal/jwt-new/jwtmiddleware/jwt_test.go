package jwtmiddleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	security "github.com/dsavchuk/eshop/internal/jwt-new"
	"github.com/dsavchuk/eshop/internal/jwt-new/jwtmiddleware"
)

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	mw := jwtmiddleware.NewJWTMiddleware()
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwtmiddleware.FromContext(r.Context())
		require.True(t, ok, "claims must be present in context")
		assert.Equal(t, int64(1), claims.UserID)
		assert.Equal(t, "admin", claims.Username)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, _, err := security.NewToken(1, "admin", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_BadFormat(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token format")
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, _, err := security.NewToken(1, "admin", -time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "the token has expired")
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, _, err := security.NewToken(1, "admin", time.Hour)
	require.NoError(t, err)

	// токен подписан другим секретом
	t.Setenv("JWT_SECRET", "another-secret")

	req := httptest.NewRequest(http.MethodGet, "/order", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token is not valid")
}

package models

// Роли пользователей
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User представляет учетную запись
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	PassHash []byte `json:"-"`
	Role     string `json:"role"`
}

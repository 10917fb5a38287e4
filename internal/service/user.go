package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/domain/models"
	security "github.com/dsavchuk/eshop/internal/jwt-new"
	"github.com/dsavchuk/eshop/internal/storage"
)

// SignInResult — ответ на успешный вход администратора.
type SignInResult struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
	Token    string `json:"token"`
}

// UserService определяет операции над учетными записями.
type UserService interface {
	Create(ctx context.Context, username, email, password, role string) (*models.User, error)
	// SignIn выдает токен; вход разрешен только учетным записям с ролью ADMIN.
	SignIn(ctx context.Context, username, email, password string) (*SignInResult, error)
	Refresh(ctx context.Context, token string) (string, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration) UserService {
	return &userService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

// Create регистрирует пользователя. Роль ADMIN назначается только при
// явном запросе, любое другое значение дает USER.
func (s *userService) Create(ctx context.Context, username, email, password, role string) (*models.User, error) {
	const op = "service.UserService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))

	if username == "" || email == "" || password == "" {
		return nil, apperr.Validation("Please provide all the details")
	}
	exists, err := s.userRepo.UserExists(ctx, username, email)
	if err != nil {
		logger.Error("failed to check user existence", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to check user existence: %w", op, err)
	}
	if exists {
		return nil, apperr.Validation("This user already exists")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}
	newRole := models.RoleUser
	if strings.EqualFold(role, models.RoleAdmin) {
		newRole = models.RoleAdmin
	}
	user := &models.User{
		Username: username,
		Email:    email,
		PassHash: passHash,
		Role:     newRole,
	}
	user, err = s.userRepo.CreateUser(ctx, user)
	if err != nil {
		// гонка с параллельной регистрацией: уникальный индекс БД сработал
		// после нашей проверки существования
		if errors.Is(err, storage.ErrUserExists) {
			return nil, apperr.Validation("This user already exists")
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user created", slog.Int64("userID", user.ID), slog.String("role", user.Role))
	return user, nil
}

func (s *userService) SignIn(ctx context.Context, username, email, password string) (*SignInResult, error) {
	const op = "service.UserService.SignIn"
	logger := s.log.With(slog.String("op", op), slog.String("username", username))

	if (username == "" && email == "") || password == "" {
		return nil, apperr.Validation("Not all data is provided")
	}

	user, err := s.userRepo.GetAdminByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.Validation("User not found")
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return nil, apperr.Validation("Incorrect password")
	}

	token, exp, err := security.NewToken(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user signed in", slog.Int64("userID", user.ID))
	return &SignInResult{
		ID:       user.ID,
		Username: user.Username,
		Exp:      exp,
		Token:    token,
	}, nil
}

// Refresh выдает новый токен по еще действующему старому.
func (s *userService) Refresh(ctx context.Context, token string) (string, error) {
	const op = "service.UserService.Refresh"

	if token == "" {
		return "", apperr.Unauthorized("Token not specified")
	}
	claims, err := security.Verify(token)
	if err != nil {
		return "", apperr.Unauthorized("Invalid token")
	}

	newToken, _, err := security.NewToken(claims.UserID, claims.Username, s.tokenTTL)
	if err != nil {
		s.log.Error("failed to generate token", slog.String("op", op), slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}
	return newToken, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.UserService.GetByID"

	if id < 1 {
		return nil, apperr.Validation("Not valid ID")
	}
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("User with ID %d not found", id)
		}
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}
	return user, nil
}

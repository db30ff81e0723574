package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/internal/server/storage"
	"github.com/iudanet/teamdesk/internal/validation"
)

// SessionTTL задает время жизни сессионного токена
const SessionTTL = 24 * time.Hour

// Service orchestrates registration and login: validates input, talks to the
// password hasher and the user store, and issues session tokens on success.
type Service struct {
	logger *slog.Logger
	users  storage.UserStorage
	codec  *TokenCodec
}

// NewService creates a new auth service
func NewService(logger *slog.Logger, users storage.UserStorage, codec *TokenCodec) *Service {
	return &Service{
		logger: logger,
		users:  users,
		codec:  codec,
	}
}

// Register validates input and creates a new user.
// Returns ErrValidation on bad input and ErrEmailTaken on a duplicate email.
// The returned user never carries the password hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.PublicUser, error) {
	if err := validation.ValidateName(name); err != nil {
		return models.PublicUser{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return models.PublicUser{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.PublicUser{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	// Проверяем занятость email до хеширования, чтобы не жечь CPU зря.
	// Гонка с параллельной регистрацией закрыта UNIQUE constraint в БД
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return models.PublicUser{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return models.PublicUser{}, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return models.PublicUser{}, ErrEmailTaken
		}
		return models.PublicUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID))

	return user.Public(), nil
}

// Login verifies credentials and issues a session token.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, models.PublicUser, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", models.PublicUser{}, ErrInvalidCredentials
		}
		return "", models.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user, SessionTTL)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID))

	return token, user.Public(), nil
}

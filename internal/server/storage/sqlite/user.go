package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/teamdesk/internal/models"
	"github.com/iudanet/teamdesk/internal/server/storage"
)

// CreateUser creates a new user and assigns its ID
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Проверяем на duplicate email
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return s.getUser(ctx, "id = ?", userID)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash,
		       external_access_token, external_refresh_token, external_token_expiry,
		       created_at, updated_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	var accessToken, refreshToken sql.NullString
	var tokenExpiry sql.NullTime

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&accessToken,
		&refreshToken,
		&tokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Пара токенов собирается только когда оба присутствуют
	if accessToken.Valid && refreshToken.Valid {
		pair := &models.TokenPair{
			AccessToken:  accessToken.String,
			RefreshToken: refreshToken.String,
		}
		if tokenExpiry.Valid {
			pair.Expiry = tokenExpiry.Time
		}
		user.ExternalTokens = pair
	}

	return user, nil
}

// UpdateExternalTokens replaces the external token pair in a single write
func (s *Storage) UpdateExternalTokens(ctx context.Context, userID int64, pair *models.TokenPair) error {
	query := `
		UPDATE users
		SET external_access_token = ?, external_refresh_token = ?, external_token_expiry = ?, updated_at = ?
		WHERE id = ?
	`

	var accessToken, refreshToken sql.NullString
	var tokenExpiry sql.NullTime

	if pair != nil {
		accessToken = sql.NullString{String: pair.AccessToken, Valid: true}
		refreshToken = sql.NullString{String: pair.RefreshToken, Valid: true}
		if !pair.Expiry.IsZero() {
			tokenExpiry = sql.NullTime{Time: pair.Expiry, Valid: true}
		}
	}

	result, err := s.db.ExecContext(ctx, query, accessToken, refreshToken, tokenExpiry, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update external tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

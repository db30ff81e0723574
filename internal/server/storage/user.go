package storage

import (
	"context"

	"github.com/iudanet/teamdesk/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user and assigns its ID
	// Returns ErrEmailTaken if email already exists
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email (exact match)
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)

	// UpdateExternalTokens replaces the user's external token pair in a
	// single write. A nil pair clears all three token columns, so the store
	// can never produce a partially linked row.
	// Returns ErrUserNotFound if user doesn't exist
	UpdateExternalTokens(ctx context.Context, userID int64, pair *models.TokenPair) error
}

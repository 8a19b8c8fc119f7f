package repository

import (
	"context"

	"github.com/utafrali/WebmailGo/internal/domain"
)

// UserRepository defines the persistence contract for the user directory.
//
// The store enforces uniqueness of email and google_id; a violated constraint
// surfaces as pkg/errors ErrAlreadyExists so that duplicate-registration
// races resolve to exactly one success.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByGoogleID retrieves a user by their linked Google identity.
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// UpdateRefreshHash atomically replaces the user's refresh-token hash
	// slot. A nil hash clears the slot (logout).
	UpdateRefreshHash(ctx context.Context, userID string, hash *string) error
}

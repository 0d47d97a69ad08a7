package repositories

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by their lower-cased email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines user writes that run inside a ledger unit
type UserWriter interface {
	// InsertUser persists a new user. A reused email or phone number yields ErrDuplicate.
	InsertUser(ctx context.Context, user domain.User) error

	// DeleteUser removes a user together with their account, cards,
	// transactions, spending logs and analysis row.
	DeleteUser(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
}

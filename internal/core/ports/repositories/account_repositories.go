package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByUserID retrieves the account owned by a user.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)
}

// AccountTransactionSupport defines account operations that run inside a ledger unit
type AccountTransactionSupport interface {
	// LockAccounts locks the given accounts for the rest of the unit, always in
	// ascending id order, and returns their current state. Any missing id yields ErrNotFound.
	LockAccounts(ctx context.Context, accountIDs ...string) (map[string]domain.Account, error)

	// SetAccountBalance writes the balance of a previously locked account.
	SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, now time.Time) error

	// InsertAccount persists a new account.
	InsertAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
}

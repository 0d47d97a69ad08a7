package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CardReader defines read operations for card data
type CardReader interface {
	// FindCardByID retrieves a card by its unique identifier.
	FindCardByID(ctx context.Context, cardID string) (*domain.Card, error)

	// ListCardsByAccountID returns every card of an account, oldest first.
	ListCardsByAccountID(ctx context.Context, accountID string) ([]domain.Card, error)

	// FindLatestCardByAccountID returns the most recently issued card of an account.
	FindLatestCardByAccountID(ctx context.Context, accountID string) (*domain.Card, error)
}

// CardTransactionSupport defines card operations that run inside a ledger unit
type CardTransactionSupport interface {
	// LockCard locks a card for the rest of the unit. Lock accounts before cards.
	LockCard(ctx context.Context, cardID string) (*domain.Card, error)

	// SetCardBalance writes the sub-balance of a previously locked card.
	SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal, now time.Time) error

	// InsertCard persists a new card. A second card of the same issuer on one
	// account, or a reused card number, yields ErrDuplicate.
	InsertCard(ctx context.Context, card domain.Card) error
}

// CardRepositoryFacade combines all card-related repository interfaces
type CardRepositoryFacade interface {
	CardReader
}

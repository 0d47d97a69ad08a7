package services

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
)

// CardReaderSvc defines read operations for card data
type CardReaderSvc interface {
	// ListCards returns every card on the caller's account.
	ListCards(ctx context.Context, callerID string) ([]domain.Card, error)

	// GetLatestCard returns the most recently issued card on the caller's account.
	GetLatestCard(ctx context.Context, callerID string) (*domain.Card, error)
}

// CardWriterSvc defines write operations for card data
type CardWriterSvc interface {
	// CreateCard issues a new card. One card per issuer per account.
	CreateCard(ctx context.Context, callerID string, req dto.CreateCardRequest) (*domain.Card, error)
}

// CardFundingSvc moves money from an account into one of its cards
type CardFundingSvc interface {
	// FundCard debits the account and credits the card sub-balance atomically.
	FundCard(ctx context.Context, callerID string, req dto.FundCardRequest) (*domain.FundResult, error)
}

// CardSvcFacade combines all card-related service interfaces
type CardSvcFacade interface {
	CardReaderSvc
	CardWriterSvc
	CardFundingSvc
}

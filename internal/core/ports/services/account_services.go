package services

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountForUser retrieves the account owned by a user.
	GetAccountForUser(ctx context.Context, userID string) (*domain.Account, error)
}

// DestinationResolverSvc turns a customer selector into an account
type DestinationResolverSvc interface {
	// ResolveDestination accepts a customer (user) id or a scanned identity payload.
	ResolveDestination(ctx context.Context, selector string) (*domain.Account, error)
}

// IdentitySvc renders and reads identity payloads
type IdentitySvc interface {
	// IdentityPayload returns the text a user's identity QR code encodes.
	IdentityPayload(ctx context.Context, userID string) (string, error)

	// ScanIdentity resolves a scanned payload to the user it names.
	ScanIdentity(ctx context.Context, payload string) (*domain.User, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	DestinationResolverSvc
	IdentitySvc
}

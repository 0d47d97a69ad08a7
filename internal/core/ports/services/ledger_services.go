package services

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
)

// TransferSvc moves money between two accounts
type TransferSvc interface {
	// Transfer debits the caller's account and credits the resolved destination
	// in one atomic unit.
	Transfer(ctx context.Context, callerID string, req dto.TransferRequest) (*domain.TransferResult, error)
}

// AccountMovementSvc mutates a single account against the system counterpart
type AccountMovementSvc interface {
	// Debit withdraws from the caller's account; guarded like a transfer.
	Debit(ctx context.Context, callerID string, req dto.AccountMovementRequest) (*domain.MovementResult, error)

	// Credit tops up the caller's account.
	Credit(ctx context.Context, callerID string, req dto.AccountMovementRequest) (*domain.MovementResult, error)
}

// TransactionReaderSvc defines read operations for ledger entries
type TransactionReaderSvc interface {
	// ListTransactions retrieves the caller's transactions, newest first.
	ListTransactions(ctx context.Context, callerID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	TransferSvc
	AccountMovementSvc
	TransactionReaderSvc
}

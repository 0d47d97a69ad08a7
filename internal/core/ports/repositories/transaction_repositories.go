package repositories

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
)

// TransactionReader defines read operations for ledger entries
type TransactionReader interface {
	// ListTransactionsByAccountID retrieves a page of an account's transactions,
	// newest first (ties broken by id), using token-based pagination.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindTransactionsInRange returns an account's transactions created inside r, oldest first.
	FindTransactionsInRange(ctx context.Context, accountID string, r domain.DateRange) ([]domain.Transaction, error)

	// FindSpendingLogByTransactionID retrieves the log mirroring an expenditure transaction.
	FindSpendingLogByTransactionID(ctx context.Context, transactionID string) (*domain.SpendingLog, error)
}

// TransactionWriter defines ledger entry writes that run inside a ledger unit
type TransactionWriter interface {
	// InsertTransactions appends ledger entries.
	InsertTransactions(ctx context.Context, txns ...domain.Transaction) error

	// InsertSpendingLog records the log for an expenditure entry.
	InsertSpendingLog(ctx context.Context, log domain.SpendingLog) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
}

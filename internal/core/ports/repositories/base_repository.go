package repositories

import (
	"context"
)

// TxFunc is the body of one atomic ledger unit. Returning an error rolls the unit back.
type TxFunc func(ctx context.Context, tx LedgerTx) error

// TransactionManager runs ledger units. Every write inside fn commits together
// or not at all; row locks taken through tx are held until fn returns.
type TransactionManager interface {
	// WithinTx runs fn inside a new unit and commits it when fn returns nil.
	WithinTx(ctx context.Context, fn TxFunc) error
}

// LedgerTx is the set of operations available inside one ledger unit.
type LedgerTx interface {
	AccountTransactionSupport
	CardTransactionSupport
	TransactionWriter
	AnalysisWriter
	UserWriter
}

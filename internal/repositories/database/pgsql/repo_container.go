package pgsql

import (
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, options ...StoreOption) portsrepo.RepositoryProvider {
	store := NewLedgerStore(dbPool, options...)

	return portsrepo.RepositoryProvider{
		UserRepo:        store.userRepository,
		AccountRepo:     store.accountRepository,
		CardRepo:        store.cardRepository,
		TransactionRepo: store.transactionRepository,
		AnalysisRepo:    store.analysisRepository,
		ReportingRepo:   store.reportingRepository,
		TxManager:       store,
	}
}

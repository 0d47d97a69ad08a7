package repositories

// LedgerStore is a complete storage backend: every reader plus the unit-of-work entry point.
type LedgerStore interface {
	UserReader
	AccountReader
	CardReader
	TransactionReader
	AnalysisReader
	ReportingRepository
	TransactionManager
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo        UserRepositoryFacade
	AccountRepo     AccountRepositoryFacade
	CardRepo        CardRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	AnalysisRepo    AnalysisReader
	ReportingRepo   ReportingRepository
	TxManager       TransactionManager
}

// ProviderFromStore exposes a single LedgerStore through every provider slot.
func ProviderFromStore(store LedgerStore) RepositoryProvider {
	return RepositoryProvider{
		UserRepo:        store,
		AccountRepo:     store,
		CardRepo:        store,
		TransactionRepo: store,
		AnalysisRepo:    store,
		ReportingRepo:   store,
		TxManager:       store,
	}
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerStore is the PostgreSQL LedgerStore. Readers run on the pool; every
// ledger unit runs in its own transaction at the configured isolation level.
type LedgerStore struct {
	BaseRepository
	*userRepository
	*accountRepository
	*cardRepository
	*transactionRepository
	*analysisRepository
	*reportingRepository

	isoLevel   pgx.TxIsoLevel
	maxRetries int
}

var _ portsrepo.LedgerStore = (*LedgerStore)(nil)

// StoreOption is a functional option for configuring the store
type StoreOption func(*LedgerStore)

// WithIsolation sets the isolation level ledger units run at. It accepts
// "serializable", "repeatable read" and "read committed".
func WithIsolation(level string) StoreOption {
	return func(s *LedgerStore) {
		switch level {
		case "repeatable read":
			s.isoLevel = pgx.RepeatableRead
		case "read committed":
			s.isoLevel = pgx.ReadCommitted
		default:
			s.isoLevel = pgx.Serializable
		}
	}
}

// WithConflictRetries sets how many times a unit aborted by a serialization
// failure or deadlock is re-run before ErrStorageConflict reaches the caller.
func WithConflictRetries(n int) StoreOption {
	return func(s *LedgerStore) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// NewLedgerStore creates a store over pool.
func NewLedgerStore(pool *pgxpool.Pool, options ...StoreOption) *LedgerStore {
	s := &LedgerStore{
		BaseRepository:        BaseRepository{Pool: pool},
		userRepository:        newUserRepository(pool),
		accountRepository:     newAccountRepository(pool),
		cardRepository:        newCardRepository(pool),
		transactionRepository: newTransactionRepository(pool),
		analysisRepository:    newAnalysisRepository(pool),
		reportingRepository:   newReportingRepository(pool),
		isoLevel:              pgx.Serializable,
		maxRetries:            2,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// WithinTx runs fn in a transaction and commits when fn returns nil.
// Conflict aborts are retried with a short backoff.
func (s *LedgerStore) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.runOnce(ctx, fn)
		if err == nil || !apperrors.IsRetryable(err) || attempt >= s.maxRetries {
			return err
		}
		slog.WarnContext(ctx, "Ledger unit aborted by a conflict, retrying",
			slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
}

func (s *LedgerStore) runOnce(ctx context.Context, fn portsrepo.TxFunc) error {
	tx, err := s.Begin(ctx, s.isoLevel)
	if err != nil {
		return err
	}
	defer s.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	if err := fn(ctx, newUnit(tx)); err != nil {
		return translateError(err)
	}
	return s.Commit(ctx, tx)
}

// unit implements LedgerTx over one open transaction.
type unit struct {
	users        *userRepository
	accounts     *accountRepository
	cards        *cardRepository
	transactions *transactionRepository
	analyses     *analysisRepository
	cardLocked   bool
}

var _ portsrepo.LedgerTx = (*unit)(nil)

func newUnit(tx pgx.Tx) *unit {
	return &unit{
		users:        newUserRepository(tx),
		accounts:     newAccountRepository(tx),
		cards:        newCardRepository(tx),
		transactions: newTransactionRepository(tx),
		analyses:     newAnalysisRepository(tx),
	}
}

func (u *unit) LockAccounts(ctx context.Context, accountIDs ...string) (map[string]domain.Account, error) {
	if u.cardLocked {
		return nil, fmt.Errorf("accounts must be locked before cards")
	}
	return u.accounts.lockAccounts(ctx, accountIDs)
}

func (u *unit) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, now time.Time) error {
	return u.accounts.setBalance(ctx, accountID, balance, now)
}

func (u *unit) InsertAccount(ctx context.Context, account domain.Account) error {
	return u.accounts.insertAccount(ctx, account)
}

func (u *unit) LockCard(ctx context.Context, cardID string) (*domain.Card, error) {
	u.cardLocked = true
	return u.cards.lockCard(ctx, cardID)
}

func (u *unit) SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal, now time.Time) error {
	return u.cards.setBalance(ctx, cardID, balance, now)
}

func (u *unit) InsertCard(ctx context.Context, card domain.Card) error {
	return u.cards.insertCard(ctx, card)
}

func (u *unit) InsertTransactions(ctx context.Context, txns ...domain.Transaction) error {
	return u.transactions.insertTransactions(ctx, txns)
}

func (u *unit) InsertSpendingLog(ctx context.Context, log domain.SpendingLog) error {
	return u.transactions.insertSpendingLog(ctx, log)
}

func (u *unit) InsertAnalysis(ctx context.Context, analysis domain.IncomeExpenditureAnalysis) error {
	return u.analyses.insertAnalysis(ctx, analysis)
}

func (u *unit) ApplyAnalysisDelta(ctx context.Context, userID string, delta domain.AnalysisDelta, now time.Time) error {
	return u.analyses.applyDelta(ctx, userID, delta, now)
}

func (u *unit) ReplaceAnalysisTotals(ctx context.Context, userID string, totals domain.IncomeExpenditure, now time.Time) error {
	return u.analyses.replaceTotals(ctx, userID, totals, now)
}

func (u *unit) InsertUser(ctx context.Context, user domain.User) error {
	return u.users.insertUser(ctx, user)
}

func (u *unit) DeleteUser(ctx context.Context, userID string) error {
	if acc, err := u.accounts.FindAccountByUserID(ctx, userID); err == nil {
		if _, err := u.LockAccounts(ctx, acc.AccountID); err != nil {
			return err
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return u.users.deleteUser(ctx, userID)
}

// Package memory is a process-local LedgerStore. Row locks are per-key and
// taken in ascending order; a unit's writes are staged and applied under one
// store-wide lock on commit, so readers never observe half a unit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/utils/pagination"
)

// Store keeps every entity in maps guarded by mu.
type Store struct {
	mu sync.RWMutex

	users     map[string]domain.User
	accounts  map[string]domain.Account
	cards     map[string]domain.Card
	txns      map[string][]domain.Transaction // by account id, insertion order
	spending  map[string]domain.SpendingLog   // by transaction id
	analyses  map[string]domain.IncomeExpenditureAnalysis
	byEmail   map[string]string // email -> user id
	byUser    map[string]string // user id -> account id
	unique    map[string]string // unique key -> owning row id
	rowLocks  map[string]chan struct{}
	lockMu    sync.Mutex
	unitCount int64
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		accounts: make(map[string]domain.Account),
		cards:    make(map[string]domain.Card),
		txns:     make(map[string][]domain.Transaction),
		spending: make(map[string]domain.SpendingLog),
		analyses: make(map[string]domain.IncomeExpenditureAnalysis),
		byEmail:  make(map[string]string),
		byUser:   make(map[string]string),
		unique:   make(map[string]string),
		rowLocks: make(map[string]chan struct{}),
	}
}

// Committed returns the number of units committed so far.
func (s *Store) Committed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unitCount
}

func (s *Store) rowLock(key string) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.rowLocks[key]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[key] = l
	}
	return l
}

// dropRowLocks forgets the row locks of deleted rows. A unit still holding
// one keeps its channel; any later lookup of the row finds it gone.
func (s *Store) dropRowLocks(keys ...string) {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	for _, k := range keys {
		delete(s.rowLocks, k)
	}
}

// WithinTx runs fn as one unit. Writes become visible together when fn
// returns nil and are discarded otherwise.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) (err error) {
	tx := newUnit(s)
	defer tx.release()
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return fmt.Errorf("ledger unit cancelled before commit: %w", err)
	}
	tx.commit()
	return nil
}

// --- readers ---

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (s *Store) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	a := s.accounts[id]
	return &a, nil
}

func (s *Store) FindCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[cardID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCardsByAccountID(ctx context.Context, accountID string) ([]domain.Card, error) {
	s.mu.RLock()
	out := make([]domain.Card, 0)
	for _, c := range s.cards {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CardID < out[j].CardID
	})
	return out, nil
}

func (s *Store) FindLatestCardByAccountID(ctx context.Context, accountID string) (*domain.Card, error) {
	cards, _ := s.ListCardsByAccountID(ctx, accountID)
	if len(cards) == 0 {
		return nil, apperrors.ErrNotFound
	}
	latest := cards[len(cards)-1]
	return &latest, nil
}

func (s *Store) accountTransactions(accountID string) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.txns[accountID]
	out := make([]domain.Transaction, len(src))
	copy(out, src)
	return out
}

func (s *Store) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	all := s.accountTransactions(accountID)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].TransactionID > all[j].TransactionID
	})

	if nextToken != nil && *nextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		start := len(all)
		for i, t := range all {
			if pagination.Before(t.CreatedAt, t.TransactionID, cursorAt, cursorID) {
				start = i
				break
			}
		}
		all = all[start:]
	}

	if len(all) <= limit {
		return all, nil, nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
	return page, &token, nil
}

func (s *Store) FindTransactionsInRange(ctx context.Context, accountID string, r domain.DateRange) ([]domain.Transaction, error) {
	all := s.accountTransactions(accountID)
	out := all[:0]
	for _, t := range all {
		if r.Contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) FindSpendingLogByTransactionID(ctx context.Context, transactionID string) (*domain.SpendingLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.spending[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &l, nil
}

func (s *Store) FindAnalysisByUserID(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (s *Store) GetMonthlySummaries(ctx context.Context, accountID string, r domain.DateRange, loc *time.Location) ([]domain.MonthlySummary, error) {
	txns, err := s.FindTransactionsInRange(ctx, accountID, r)
	if err != nil {
		return nil, err
	}
	return domain.SummarizeMonthly(txns, loc), nil
}

func (s *Store) GetIncomeExpenditure(ctx context.Context, accountID string, r domain.DateRange) (*domain.IncomeExpenditure, error) {
	txns, err := s.FindTransactionsInRange(ctx, accountID, r)
	if err != nil {
		return nil, err
	}
	totals := domain.SumIncomeExpenditure(txns)
	return &totals, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// unit is one in-flight ledger unit.
type unit struct {
	s *Store

	held       map[string]bool
	locks      []chan struct{}
	maxAccount string
	cardLocked bool

	// staged view of rows this unit locked or created
	accounts map[string]domain.Account
	cards    map[string]domain.Card
	users    map[string]domain.User
	analyses map[string]domain.IncomeExpenditure

	claims []string
	ops    []func(*Store)
}

var _ portsrepo.LedgerTx = (*unit)(nil)

func newUnit(s *Store) *unit {
	return &unit{
		s:        s,
		held:     make(map[string]bool),
		accounts: make(map[string]domain.Account),
		cards:    make(map[string]domain.Card),
		users:    make(map[string]domain.User),
		analyses: make(map[string]domain.IncomeExpenditure),
	}
}

func (u *unit) acquire(ctx context.Context, key string) error {
	if u.held[key] {
		return nil
	}
	l := u.s.rowLock(key)
	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("waiting for lock on %s: %w", key, ctx.Err())
	}
	u.held[key] = true
	u.locks = append(u.locks, l)
	return nil
}

func (u *unit) release() {
	for i := len(u.locks) - 1; i >= 0; i-- {
		<-u.locks[i]
	}
	u.locks = nil
}

// claim reserves a unique key for this unit until rollback.
func (u *unit) claim(key, owner string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, taken := u.s.unique[key]; taken {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, key)
	}
	u.s.unique[key] = owner
	u.claims = append(u.claims, key)
	return nil
}

func (u *unit) rollback() {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, k := range u.claims {
		delete(u.s.unique, k)
	}
	u.claims = nil
	u.ops = nil
}

func (u *unit) commit() {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, op := range u.ops {
		op(u.s)
	}
	u.s.unitCount++
}

func (u *unit) committedAccount(id string) (domain.Account, bool) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	a, ok := u.s.accounts[id]
	return a, ok
}

func (u *unit) accountExists(id string) bool {
	if _, ok := u.accounts[id]; ok {
		return true
	}
	_, ok := u.committedAccount(id)
	return ok
}

// --- accounts ---

func (u *unit) LockAccounts(ctx context.Context, accountIDs ...string) (map[string]domain.Account, error) {
	if u.cardLocked {
		return nil, fmt.Errorf("accounts must be locked before cards")
	}
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)

	out := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		key := "account:" + id
		if !u.held[key] {
			if u.maxAccount != "" && id < u.maxAccount {
				return nil, fmt.Errorf("account %s locked out of order", id)
			}
			if err := u.acquire(ctx, key); err != nil {
				return nil, err
			}
			u.maxAccount = id
		}

		a, ok := u.accounts[id]
		if !ok {
			a, ok = u.committedAccount(id)
			if !ok {
				return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
			}
			u.accounts[id] = a
		}
		out[id] = a
	}
	return out, nil
}

func (u *unit) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, now time.Time) error {
	if !u.held["account:"+accountID] {
		return fmt.Errorf("account %s was not locked by this unit", accountID)
	}
	if balance.IsNegative() {
		return fmt.Errorf("%w: account %s balance would be %s", apperrors.ErrInsufficientFunds, accountID, balance.String())
	}
	if err := domain.ValidateBalance(balance); err != nil {
		return fmt.Errorf("%w: account %s: %v", apperrors.ErrInvalidAmount, accountID, err)
	}
	a := u.accounts[accountID]
	a.Balance = balance
	a.LastUpdatedAt = now
	u.accounts[accountID] = a

	u.ops = append(u.ops, func(s *Store) {
		row := s.accounts[accountID]
		row.Balance = balance
		row.LastUpdatedAt = now
		s.accounts[accountID] = row
	})
	return nil
}

func (u *unit) InsertAccount(ctx context.Context, account domain.Account) error {
	if _, staged := u.users[account.UserID]; !staged {
		if _, err := u.s.FindUserByID(ctx, account.UserID); err != nil {
			return fmt.Errorf("owner of account %s: %w", account.AccountID, err)
		}
	}
	for _, key := range []string{
		"account:" + account.AccountID,
		"account-user:" + account.UserID,
		"account-number:" + account.AccountNumber,
	} {
		if err := u.claim(key, account.AccountID); err != nil {
			return err
		}
	}

	// Invisible to other units until commit, so no lock is needed.
	u.held["account:"+account.AccountID] = true
	u.accounts[account.AccountID] = account
	u.ops = append(u.ops, func(s *Store) {
		s.accounts[account.AccountID] = account
		s.byUser[account.UserID] = account.AccountID
	})
	return nil
}

// --- cards ---

func (u *unit) LockCard(ctx context.Context, cardID string) (*domain.Card, error) {
	if err := u.acquire(ctx, "card:"+cardID); err != nil {
		return nil, err
	}
	u.cardLocked = true

	c, ok := u.cards[cardID]
	if !ok {
		u.s.mu.RLock()
		c, ok = u.s.cards[cardID]
		u.s.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("card %s: %w", cardID, apperrors.ErrNotFound)
		}
		u.cards[cardID] = c
	}
	return &c, nil
}

func (u *unit) SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal, now time.Time) error {
	if !u.held["card:"+cardID] {
		return fmt.Errorf("card %s was not locked by this unit", cardID)
	}
	if balance.IsNegative() {
		return fmt.Errorf("%w: card %s balance would be %s", apperrors.ErrInsufficientFunds, cardID, balance.String())
	}
	if err := domain.ValidateBalance(balance); err != nil {
		return fmt.Errorf("%w: card %s: %v", apperrors.ErrInvalidAmount, cardID, err)
	}
	c := u.cards[cardID]
	c.CardBalance = balance
	c.LastUpdatedAt = now
	u.cards[cardID] = c

	u.ops = append(u.ops, func(s *Store) {
		row := s.cards[cardID]
		row.CardBalance = balance
		row.LastUpdatedAt = now
		s.cards[cardID] = row
	})
	return nil
}

func (u *unit) InsertCard(ctx context.Context, card domain.Card) error {
	if !u.accountExists(card.AccountID) {
		return fmt.Errorf("account %s of card: %w", card.AccountID, apperrors.ErrNotFound)
	}
	for _, key := range []string{
		"card:" + card.CardID,
		"card-number:" + card.CardNumber,
		"card-issuer:" + card.AccountID + ":" + string(card.Issuer),
	} {
		if err := u.claim(key, card.CardID); err != nil {
			return err
		}
	}

	u.held["card:"+card.CardID] = true
	u.cards[card.CardID] = card
	u.ops = append(u.ops, func(s *Store) {
		s.cards[card.CardID] = card
	})
	return nil
}

// --- transactions ---

func (u *unit) InsertTransactions(ctx context.Context, txns ...domain.Transaction) error {
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if !u.accountExists(t.AccountID) {
			return fmt.Errorf("account %s of transaction: %w", t.AccountID, apperrors.ErrNotFound)
		}
		if err := u.claim("transaction:"+t.TransactionID, t.TransactionID); err != nil {
			return err
		}
		t := t
		u.ops = append(u.ops, func(s *Store) {
			s.txns[t.AccountID] = append(s.txns[t.AccountID], t)
		})
	}
	return nil
}

func (u *unit) InsertSpendingLog(ctx context.Context, log domain.SpendingLog) error {
	if err := u.claim("spending-log:"+log.TransactionID, log.SpendingLogID); err != nil {
		return err
	}
	u.ops = append(u.ops, func(s *Store) {
		s.spending[log.TransactionID] = log
	})
	return nil
}

// --- analysis ---

// stagedTotals returns the analysis totals as this unit would leave them.
func (u *unit) stagedTotals(userID string) (domain.IncomeExpenditure, bool) {
	if t, ok := u.analyses[userID]; ok {
		return t, true
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	a, ok := u.s.analyses[userID]
	if !ok {
		return domain.IncomeExpenditure{}, false
	}
	return domain.IncomeExpenditure{TotalIncome: a.TotalIncome, TotalExpenditure: a.TotalExpenditure}, true
}

func checkTotals(userID string, totals domain.IncomeExpenditure) error {
	for _, v := range []decimal.Decimal{totals.TotalIncome, totals.TotalExpenditure} {
		if err := domain.ValidateBalance(v); err != nil {
			return fmt.Errorf("analysis of user %s: %w: %v", userID, apperrors.ErrInvalidAmount, err)
		}
	}
	return nil
}

func (u *unit) InsertAnalysis(ctx context.Context, analysis domain.IncomeExpenditureAnalysis) error {
	totals := domain.IncomeExpenditure{TotalIncome: analysis.TotalIncome, TotalExpenditure: analysis.TotalExpenditure}
	if err := checkTotals(analysis.UserID, totals); err != nil {
		return err
	}
	if err := u.claim("analysis-user:"+analysis.UserID, analysis.AnalysisID); err != nil {
		return err
	}
	u.analyses[analysis.UserID] = totals
	u.ops = append(u.ops, func(s *Store) {
		s.analyses[analysis.UserID] = analysis
	})
	return nil
}

func (u *unit) ApplyAnalysisDelta(ctx context.Context, userID string, delta domain.AnalysisDelta, now time.Time) error {
	current, ok := u.stagedTotals(userID)
	if !ok {
		return fmt.Errorf("analysis of user %s: %w", userID, apperrors.ErrNotFound)
	}
	next := domain.IncomeExpenditure{
		TotalIncome:      current.TotalIncome.Add(delta.Income),
		TotalExpenditure: current.TotalExpenditure.Add(delta.Expenditure),
	}
	if err := checkTotals(userID, next); err != nil {
		return err
	}
	u.analyses[userID] = next
	u.ops = append(u.ops, func(s *Store) {
		a := s.analyses[userID]
		a.TotalIncome = a.TotalIncome.Add(delta.Income)
		a.TotalExpenditure = a.TotalExpenditure.Add(delta.Expenditure)
		a.LastUpdatedAt = now
		s.analyses[userID] = a
	})
	return nil
}

func (u *unit) ReplaceAnalysisTotals(ctx context.Context, userID string, totals domain.IncomeExpenditure, now time.Time) error {
	if _, ok := u.stagedTotals(userID); !ok {
		return fmt.Errorf("analysis of user %s: %w", userID, apperrors.ErrNotFound)
	}
	if err := checkTotals(userID, totals); err != nil {
		return err
	}
	u.analyses[userID] = totals
	u.ops = append(u.ops, func(s *Store) {
		a := s.analyses[userID]
		a.TotalIncome = totals.TotalIncome
		a.TotalExpenditure = totals.TotalExpenditure
		a.LastUpdatedAt = now
		s.analyses[userID] = a
	})
	return nil
}

// --- users ---

func (u *unit) InsertUser(ctx context.Context, user domain.User) error {
	for _, key := range []string{
		"user:" + user.UserID,
		"email:" + strings.ToLower(user.Email),
		"phone:" + user.PhoneNumber,
	} {
		if err := u.claim(key, user.UserID); err != nil {
			return err
		}
	}
	u.users[user.UserID] = user
	u.ops = append(u.ops, func(s *Store) {
		s.users[user.UserID] = user
		s.byEmail[strings.ToLower(user.Email)] = user.UserID
	})
	return nil
}

func (u *unit) DeleteUser(ctx context.Context, userID string) error {
	user, err := u.s.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if acc, err := u.s.FindAccountByUserID(ctx, userID); err == nil {
		// Wait out any unit still moving money on the account.
		if _, err := u.LockAccounts(ctx, acc.AccountID); err != nil {
			return err
		}
	}

	u.ops = append(u.ops, func(s *Store) {
		release := func(key string) { delete(s.unique, key) }

		if accountID, ok := s.byUser[userID]; ok {
			acc := s.accounts[accountID]
			lockKeys := []string{"account:" + accountID}
			for id, c := range s.cards {
				if c.AccountID != accountID {
					continue
				}
				lockKeys = append(lockKeys, "card:"+id)
				release("card:" + id)
				release("card-number:" + c.CardNumber)
				release("card-issuer:" + accountID + ":" + string(c.Issuer))
				delete(s.cards, id)
			}
			for _, t := range s.txns[accountID] {
				release("transaction:" + t.TransactionID)
				release("spending-log:" + t.TransactionID)
				delete(s.spending, t.TransactionID)
			}
			delete(s.txns, accountID)
			release("account:" + accountID)
			release("account-user:" + userID)
			release("account-number:" + acc.AccountNumber)
			delete(s.accounts, accountID)
			delete(s.byUser, userID)
			s.dropRowLocks(lockKeys...)
		}
		if _, ok := s.analyses[userID]; ok {
			release("analysis-user:" + userID)
			delete(s.analyses, userID)
		}
		release("user:" + userID)
		release("email:" + strings.ToLower(user.Email))
		release("phone:" + user.PhoneNumber)
		delete(s.byEmail, strings.ToLower(user.Email))
		delete(s.users, userID)
	})
	return nil
}

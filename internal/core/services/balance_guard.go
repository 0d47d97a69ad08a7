package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceGuard hands out exclusive, validated access to account balances
// inside a ledger unit.
type BalanceGuard struct {
	newID func() string
}

// NewBalanceGuard returns a guard that names ledger rows with random UUIDs.
func NewBalanceGuard() *BalanceGuard {
	return &BalanceGuard{newID: uuid.NewString}
}

// LockedAccount is an account row held exclusively by the current unit.
// Debit and Credit change only the in-unit copy; Save writes it back.
type LockedAccount struct {
	domain.Account
	guard *BalanceGuard
	dirty bool
}

// Lock acquires every account in ids, in ascending id order, for the rest
// of the unit. A missing account yields ErrNotFound.
func (g *BalanceGuard) Lock(ctx context.Context, tx portsrepo.LedgerTx, ids ...string) (map[string]*LockedAccount, error) {
	rows, err := tx.LockAccounts(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*LockedAccount, len(rows))
	for id, acc := range rows {
		out[id] = &LockedAccount{Account: acc, guard: g}
	}
	return out, nil
}

// Save writes back every changed balance.
func (g *BalanceGuard) Save(ctx context.Context, tx portsrepo.LedgerTx, now time.Time, accounts ...*LockedAccount) error {
	for _, a := range accounts {
		if !a.dirty {
			continue
		}
		if err := tx.SetAccountBalance(ctx, a.AccountID, a.Balance, now); err != nil {
			return fmt.Errorf("failed to update balance of account %s: %w", a.AccountID, err)
		}
		a.dirty = false
	}
	return nil
}

// Debit removes amount from the balance and returns the ledger row that
// records it. The balance is left untouched when it cannot cover amount.
func (a *LockedAccount) Debit(amount decimal.Decimal, subtype domain.TransactionSubtype, description, referenceID string, at time.Time) (domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err)
	}
	if a.Balance.LessThan(amount) {
		return domain.Transaction{}, fmt.Errorf("%w: account %s holds %s, needs %s",
			apperrors.ErrInsufficientFunds, a.AccountID, a.Balance.StringFixed(domain.AmountScale), amount.StringFixed(domain.AmountScale))
	}
	return a.apply(domain.Debit, amount, subtype, description, referenceID, at), nil
}

// Credit adds amount to the balance and returns the ledger row that records it.
// A balance that would outgrow storage is refused with ErrInvalidAmount.
func (a *LockedAccount) Credit(amount decimal.Decimal, subtype domain.TransactionSubtype, description, referenceID string, at time.Time) (domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err)
	}
	if err := domain.ValidateBalance(a.Balance.Add(amount)); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: account %s: %v", apperrors.ErrInvalidAmount, a.AccountID, err)
	}
	return a.apply(domain.Deposit, amount, subtype, description, referenceID, at), nil
}

func (a *LockedAccount) apply(typ domain.TransactionType, amount decimal.Decimal, subtype domain.TransactionSubtype, description, referenceID string, at time.Time) domain.Transaction {
	t := domain.Transaction{
		TransactionID:   a.guard.newID(),
		AccountID:       a.AccountID,
		Amount:          amount,
		AmountBefore:    a.Balance,
		TransactionType: typ,
		Subtype:         subtype,
		Description:     description,
		ReferenceID:     referenceID,
		CreatedAt:       at,
	}
	a.Balance = a.Balance.Add(t.Signed())
	t.AmountAfter = a.Balance
	a.dirty = true
	return t
}

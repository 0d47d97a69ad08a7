package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/models"
	"github.com/SscSPs/ewallet_ledger/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// unit implements LedgerTx over one open gorm transaction. SQLite has no row
// locks; the single connection already excludes every other unit, so locking
// only loads rows and checks the account-before-card order.
type unit struct {
	tx         *gorm.DB
	cardLocked bool
}

var _ portsrepo.LedgerTx = (*unit)(nil)

func (u *unit) db(ctx context.Context) *gorm.DB { return u.tx.WithContext(ctx) }

func (u *unit) LockAccounts(ctx context.Context, accountIDs ...string) (map[string]domain.Account, error) {
	if u.cardLocked {
		return nil, fmt.Errorf("accounts must be locked before cards")
	}
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)

	var ms []models.Account
	if err := u.db(ctx).Where("account_id IN ?", ids).Order("account_id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", translateError(err))
	}
	out := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		out[m.AccountID] = mapping.ToDomainAccount(m)
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
	}
	return out, nil
}

// update applies values to the single row matched by where.
func (u *unit) update(ctx context.Context, model any, what string, values map[string]any, where string, args ...any) error {
	res := u.db(ctx).Model(model).Where(where, args...).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", what, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return nil
}

func (u *unit) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, now time.Time) error {
	if balance.IsNegative() {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrInsufficientFunds)
	}
	if err := domain.ValidateBalance(balance); err != nil {
		return fmt.Errorf("account %s: %w: %v", accountID, apperrors.ErrInvalidAmount, err)
	}
	return u.update(ctx, &models.Account{}, "account "+accountID,
		map[string]any{"balance": balance, "last_updated_at": utc(now)},
		"account_id = ?", accountID)
}

func (u *unit) InsertAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	m.CreatedAt, m.LastUpdatedAt = utc(m.CreatedAt), utc(m.LastUpdatedAt)
	if err := u.db(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, translateError(err))
	}
	return nil
}

func (u *unit) LockCard(ctx context.Context, cardID string) (*domain.Card, error) {
	u.cardLocked = true
	var m models.Card
	if err := first(u.db(ctx).Where("card_id = ?", cardID), &m, "card "+cardID); err != nil {
		return nil, err
	}
	c := mapping.ToDomainCard(m)
	return &c, nil
}

func (u *unit) SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal, now time.Time) error {
	if balance.IsNegative() {
		return fmt.Errorf("card %s: %w", cardID, apperrors.ErrInsufficientFunds)
	}
	if err := domain.ValidateBalance(balance); err != nil {
		return fmt.Errorf("card %s: %w: %v", cardID, apperrors.ErrInvalidAmount, err)
	}
	return u.update(ctx, &models.Card{}, "card "+cardID,
		map[string]any{"card_balance": balance, "last_updated_at": utc(now)},
		"card_id = ?", cardID)
}

func (u *unit) InsertCard(ctx context.Context, card domain.Card) error {
	m := mapping.ToModelCard(card)
	m.ExpiryDate = utc(m.ExpiryDate)
	m.CreatedAt, m.LastUpdatedAt = utc(m.CreatedAt), utc(m.LastUpdatedAt)
	if err := u.db(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save card for account %s: %w", m.AccountID, translateError(err))
	}
	return nil
}

func (u *unit) InsertTransactions(ctx context.Context, txns ...domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	ms := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		m := mapping.ToModelTransaction(t)
		m.CreatedAt = utc(m.CreatedAt)
		ms = append(ms, m)
	}
	if err := u.db(ctx).Create(&ms).Error; err != nil {
		return fmt.Errorf("failed to insert transactions: %w", translateError(err))
	}
	return nil
}

func (u *unit) InsertSpendingLog(ctx context.Context, log domain.SpendingLog) error {
	m := mapping.ToModelSpendingLog(log)
	m.Timestamp = utc(m.Timestamp)
	if err := u.db(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save spending log for transaction %s: %w", m.TransactionID, translateError(err))
	}
	return nil
}

func (u *unit) InsertAnalysis(ctx context.Context, analysis domain.IncomeExpenditureAnalysis) error {
	m := mapping.ToModelAnalysis(analysis)
	m.CreatedAt, m.LastUpdatedAt = utc(m.CreatedAt), utc(m.LastUpdatedAt)
	if err := u.db(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save analysis for user %s: %w", m.UserID, translateError(err))
	}
	return nil
}

func (u *unit) ApplyAnalysisDelta(ctx context.Context, userID string, delta domain.AnalysisDelta, now time.Time) error {
	var m models.Analysis
	if err := first(u.db(ctx).Where("user_id = ?", userID), &m, "analysis of user "+userID); err != nil {
		return fmt.Errorf("analysis of user %s: %w", userID, err)
	}
	return u.ReplaceAnalysisTotals(ctx, userID, domain.IncomeExpenditure{
		TotalIncome:      m.TotalIncome.Add(delta.Income),
		TotalExpenditure: m.TotalExpenditure.Add(delta.Expenditure),
	}, now)
}

func (u *unit) ReplaceAnalysisTotals(ctx context.Context, userID string, totals domain.IncomeExpenditure, now time.Time) error {
	if err := validateTotals(totals); err != nil {
		return fmt.Errorf("analysis of user %s: %w", userID, err)
	}
	return u.update(ctx, &models.Analysis{}, "analysis of user "+userID,
		map[string]any{
			"total_income":      totals.TotalIncome,
			"total_expenditure": totals.TotalExpenditure,
			"last_updated_at":   utc(now),
		},
		"user_id = ?", userID)
}

func (u *unit) InsertUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	m.Email = strings.ToLower(m.Email)
	m.CreatedAt, m.LastUpdatedAt = utc(m.CreatedAt), utc(m.LastUpdatedAt)
	if err := u.db(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", m.UserID, translateError(err))
	}
	return nil
}

// DeleteUser removes the user's rows leaf first.
func (u *unit) DeleteUser(ctx context.Context, userID string) error {
	db := u.db(ctx)

	var acc models.Account
	err := first(db.Where("user_id = ?", userID), &acc, "account of user "+userID)
	switch {
	case err == nil:
		txnIDs := db.Model(&models.Transaction{}).Select("transaction_id").Where("account_id = ?", acc.AccountID)
		steps := []struct {
			model any
			where string
			arg   any
		}{
			{&models.SpendingLog{}, "transaction_id IN (?)", txnIDs},
			{&models.Transaction{}, "account_id = ?", acc.AccountID},
			{&models.Card{}, "account_id = ?", acc.AccountID},
			{&models.Account{}, "account_id = ?", acc.AccountID},
		}
		for _, step := range steps {
			if err := db.Where(step.where, step.arg).Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete rows of user %s: %w", userID, translateError(err))
			}
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	if err := db.Where("user_id = ?", userID).Delete(&models.Analysis{}).Error; err != nil {
		return fmt.Errorf("failed to delete analysis of user %s: %w", userID, translateError(err))
	}
	res := db.Where("user_id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

func validateTotals(totals domain.IncomeExpenditure) error {
	for _, v := range []decimal.Decimal{totals.TotalIncome, totals.TotalExpenditure} {
		if err := domain.ValidateBalance(v); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err)
		}
	}
	return nil
}

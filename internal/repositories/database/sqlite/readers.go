package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/models"
	"github.com/SscSPs/ewallet_ledger/internal/utils/mapping"
	"github.com/SscSPs/ewallet_ledger/internal/utils/pagination"
	"gorm.io/gorm"
)

// first loads one row into dest, mapping a miss to ErrNotFound.
func first(q *gorm.DB, dest any, what string) error {
	err := q.Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", what, translateError(err))
	}
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var m models.User
	if err := first(s.conn(ctx).Where("user_id = ? AND deleted_at IS NULL", userID), &m, "user "+userID); err != nil {
		return nil, err
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m models.User
	if err := first(s.conn(ctx).Where("email = ? AND deleted_at IS NULL", strings.ToLower(email)), &m, "user by email"); err != nil {
		return nil, err
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var m models.Account
	if err := first(s.conn(ctx).Where("account_id = ?", accountID), &m, "account "+accountID); err != nil {
		return nil, err
	}
	a := mapping.ToDomainAccount(m)
	return &a, nil
}

func (s *Store) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	var m models.Account
	if err := first(s.conn(ctx).Where("user_id = ?", userID), &m, "account of user "+userID); err != nil {
		return nil, err
	}
	a := mapping.ToDomainAccount(m)
	return &a, nil
}

func (s *Store) FindCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	var m models.Card
	if err := first(s.conn(ctx).Where("card_id = ?", cardID), &m, "card "+cardID); err != nil {
		return nil, err
	}
	c := mapping.ToDomainCard(m)
	return &c, nil
}

func (s *Store) ListCardsByAccountID(ctx context.Context, accountID string) ([]domain.Card, error) {
	var ms []models.Card
	err := s.conn(ctx).Where("account_id = ?", accountID).Order("created_at ASC, card_id ASC").Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards of account %s: %w", accountID, translateError(err))
	}
	return mapping.ToDomainCardSlice(ms), nil
}

func (s *Store) FindLatestCardByAccountID(ctx context.Context, accountID string) (*domain.Card, error) {
	var m models.Card
	q := s.conn(ctx).Where("account_id = ?", accountID).Order("created_at DESC, card_id DESC")
	if err := first(q, &m, "latest card of account "+accountID); err != nil {
		return nil, err
	}
	c := mapping.ToDomainCard(m)
	return &c, nil
}

func (s *Store) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	q := s.conn(ctx).Where("account_id = ?", accountID)
	if nextToken != nil && *nextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		cursorAt = utc(cursorAt)
		q = q.Where("(created_at < ? OR (created_at = ? AND transaction_id < ?))", cursorAt, cursorAt, cursorID)
	}

	var ms []models.Transaction
	err := q.Order("created_at DESC, transaction_id DESC").Limit(limit + 1).Find(&ms).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions of account %s: %w", accountID, translateError(err))
	}

	var next *string
	if len(ms) > limit {
		last := ms[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		next = &token
		ms = ms[:limit]
	}
	return mapping.ToDomainTransactionSlice(ms), next, nil
}

func (s *Store) FindTransactionsInRange(ctx context.Context, accountID string, r domain.DateRange) ([]domain.Transaction, error) {
	q := s.conn(ctx).Where("account_id = ?", accountID)
	if !r.Start.IsZero() {
		q = q.Where("created_at >= ?", utc(r.Start))
	}
	if !r.End.IsZero() {
		q = q.Where("created_at < ?", utc(r.End))
	}
	var ms []models.Transaction
	if err := q.Order("created_at ASC, transaction_id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to read transactions of account %s: %w", accountID, translateError(err))
	}
	return mapping.ToDomainTransactionSlice(ms), nil
}

func (s *Store) FindSpendingLogByTransactionID(ctx context.Context, transactionID string) (*domain.SpendingLog, error) {
	var m models.SpendingLog
	if err := first(s.conn(ctx).Where("transaction_id = ?", transactionID), &m, "spending log"); err != nil {
		return nil, err
	}
	l := mapping.ToDomainSpendingLog(m)
	return &l, nil
}

func (s *Store) FindAnalysisByUserID(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error) {
	var m models.Analysis
	if err := first(s.conn(ctx).Where("user_id = ?", userID), &m, "analysis of user "+userID); err != nil {
		return nil, err
	}
	a := mapping.ToDomainAnalysis(m)
	return &a, nil
}

// Amounts are stored as text, so aggregation happens in Go over the range.

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

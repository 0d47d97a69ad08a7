package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/models"
	"github.com/SscSPs/ewallet_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type analysisRepository struct {
	db querier
}

func newAnalysisRepository(db querier) *analysisRepository {
	return &analysisRepository{db: db}
}

var _ portsrepo.AnalysisReader = (*analysisRepository)(nil)

func (r *analysisRepository) FindAnalysisByUserID(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error) {
	query := `
		SELECT analysis_id, user_id, total_income, total_expenditure, created_at, last_updated_at
		FROM income_expenditure_analyses
		WHERE user_id = $1;
	`
	var m models.Analysis
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.AnalysisID,
		&m.UserID,
		&m.TotalIncome,
		&m.TotalExpenditure,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find analysis for user %s: %w", userID, err)
	}
	a := mapping.ToDomainAnalysis(m)
	return &a, nil
}

func (r *analysisRepository) insertAnalysis(ctx context.Context, analysis domain.IncomeExpenditureAnalysis) error {
	m := mapping.ToModelAnalysis(analysis)
	query := `
		INSERT INTO income_expenditure_analyses (analysis_id, user_id, total_income, total_expenditure, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query, m.AnalysisID, m.UserID, m.TotalIncome, m.TotalExpenditure, m.CreatedAt, m.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save analysis for user %s: %w", m.UserID, translateError(err))
	}
	return nil
}

func (r *analysisRepository) applyDelta(ctx context.Context, userID string, delta domain.AnalysisDelta, now time.Time) error {
	query := `
		UPDATE income_expenditure_analyses
		SET total_income = total_income + $2, total_expenditure = total_expenditure + $3, last_updated_at = $4
		WHERE user_id = $1;
	`
	return r.update(ctx, query, userID, delta.Income, delta.Expenditure, now)
}

func (r *analysisRepository) replaceTotals(ctx context.Context, userID string, totals domain.IncomeExpenditure, now time.Time) error {
	query := `
		UPDATE income_expenditure_analyses
		SET total_income = $2, total_expenditure = $3, last_updated_at = $4
		WHERE user_id = $1;
	`
	return r.update(ctx, query, userID, totals.TotalIncome, totals.TotalExpenditure, now)
}

func (r *analysisRepository) update(ctx context.Context, query, userID string, args ...any) error {
	ct, err := r.db.Exec(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update analysis for user %s: %w", userID, translateError(err))
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("analysis of user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

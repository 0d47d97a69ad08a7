package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	db querier
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db querier) *reportingRepository {
	return &reportingRepository{db: db}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetMonthlySummaries groups deposits and debits by calendar month in loc.
func (r *reportingRepository) GetMonthlySummaries(ctx context.Context, accountID string, dr domain.DateRange, loc *time.Location) ([]domain.MonthlySummary, error) {
	if loc == nil {
		loc = time.UTC
	}
	where, args := rangeFilter(accountID, dr)
	args = append(args, loc.String())
	tz := fmt.Sprintf("$%d", len(args))

	query := `
		SELECT
			EXTRACT(YEAR FROM created_at AT TIME ZONE ` + tz + `)::int AS year,
			EXTRACT(MONTH FROM created_at AT TIME ZONE ` + tz + `)::int AS month,
			COALESCE(SUM(CASE WHEN transaction_type = 'deposit' THEN amount ELSE 0 END), 0) AS total_deposits,
			COALESCE(SUM(CASE WHEN transaction_type = 'debit' THEN amount ELSE 0 END), 0) AS total_debits
		FROM transactions
		WHERE ` + where + `
		GROUP BY 1, 2
		ORDER BY 1, 2
	`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying monthly summaries: %w", translateError(err))
	}
	defer rows.Close()

	result := []domain.MonthlySummary{}
	for rows.Next() {
		var row domain.MonthlySummary
		if err := rows.Scan(&row.Year, &row.Month, &row.TotalDeposits, &row.TotalDebits); err != nil {
			return nil, fmt.Errorf("error scanning monthly summary row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly summary rows: %w", err)
	}
	return result, nil
}

// GetIncomeExpenditure sums the income and expenditure subtypes inside dr.
func (r *reportingRepository) GetIncomeExpenditure(ctx context.Context, accountID string, dr domain.DateRange) (*domain.IncomeExpenditure, error) {
	where, args := rangeFilter(accountID, dr)
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN subtype = 'income' THEN amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN subtype = 'expenditure' THEN amount ELSE 0 END), 0) AS total_expenditure
		FROM transactions
		WHERE ` + where

	var income, expenditure decimal.Decimal
	if err := r.db.QueryRow(ctx, query, args...).Scan(&income, &expenditure); err != nil {
		return nil, fmt.Errorf("error querying income and expenditure: %w", translateError(err))
	}
	return &domain.IncomeExpenditure{TotalIncome: income, TotalExpenditure: expenditure}, nil
}

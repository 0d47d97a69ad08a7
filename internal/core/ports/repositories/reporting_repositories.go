package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
)

// ReportingRepository defines aggregate reads over the ledger
type ReportingRepository interface {
	// GetMonthlySummaries sums deposits and debits per calendar month in loc,
	// ascending, omitting months without activity.
	GetMonthlySummaries(ctx context.Context, accountID string, r domain.DateRange, loc *time.Location) ([]domain.MonthlySummary, error)

	// GetIncomeExpenditure sums the income and expenditure subtypes inside r.
	GetIncomeExpenditure(ctx context.Context, accountID string, r domain.DateRange) (*domain.IncomeExpenditure, error)
}

// AnalysisReader defines read operations for the income/expenditure cache
type AnalysisReader interface {
	// FindAnalysisByUserID retrieves the cached totals of a user.
	FindAnalysisByUserID(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error)
}

// AnalysisWriter defines cache writes that run inside a ledger unit
type AnalysisWriter interface {
	// InsertAnalysis creates the cache row of a user.
	InsertAnalysis(ctx context.Context, analysis domain.IncomeExpenditureAnalysis) error

	// ApplyAnalysisDelta adds delta to the cached totals of a user.
	ApplyAnalysisDelta(ctx context.Context, userID string, delta domain.AnalysisDelta, now time.Time) error

	// ReplaceAnalysisTotals overwrites the cached totals of a user.
	ReplaceAnalysisTotals(ctx context.Context, userID string, totals domain.IncomeExpenditure, now time.Time) error
}

package services

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
)

// ReportingService defines aggregate reads over a user's ledger
type ReportingService interface {
	// MonthlyComparison sums deposits and debits per calendar month for a period or date range.
	MonthlyComparison(ctx context.Context, userID string, params dto.MonthlyComparisonParams) ([]domain.MonthlySummary, error)

	// IncomeExpenditure sums income and expenditure, all-time or inside an inclusive date range.
	IncomeExpenditure(ctx context.Context, userID string, params dto.DateRangeParams) (*domain.IncomeExpenditure, error)

	// AnalysisSnapshot returns the cached running totals.
	AnalysisSnapshot(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error)

	// RebuildAnalysis recomputes the cached totals from the ledger.
	RebuildAnalysis(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error)
}

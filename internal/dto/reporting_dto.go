package dto

import (
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateRangeParams is an optional inclusive YYYY-MM-DD range.
type DateRangeParams struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// HasRange reports whether both bounds were supplied.
func (p DateRangeParams) HasRange() bool {
	return p.StartDate != "" && p.EndDate != ""
}

// MonthlyComparisonParams selects the window for GET /reports/monthly.
// An explicit date range takes precedence over Period.
type MonthlyComparisonParams struct {
	Period domain.PeriodSelector `form:"period"`
	DateRangeParams
}

// MonthlySummaryResponse represents one month of the comparison report
type MonthlySummaryResponse struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	TotalDeposits decimal.Decimal `json:"totalDeposits"`
	TotalDebits   decimal.Decimal `json:"totalDebits"`
}

// IncomeExpenditureResponse represents summed income and expenditure
type IncomeExpenditureResponse struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenditure decimal.Decimal `json:"totalExpenditure"`
}

// AnalysisResponse represents the cached running totals
type AnalysisResponse struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenditure decimal.Decimal `json:"totalExpenditure"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
}

// ToMonthlySummaryResponses converts domain summaries to response DTOs
func ToMonthlySummaryResponses(rows []domain.MonthlySummary) []MonthlySummaryResponse {
	res := make([]MonthlySummaryResponse, len(rows))
	for i, r := range rows {
		res[i] = MonthlySummaryResponse{Year: r.Year, Month: r.Month, TotalDeposits: r.TotalDeposits, TotalDebits: r.TotalDebits}
	}
	return res
}

// ToIncomeExpenditureResponse converts domain totals to a response DTO
func ToIncomeExpenditureResponse(ie *domain.IncomeExpenditure) IncomeExpenditureResponse {
	return IncomeExpenditureResponse{TotalIncome: ie.TotalIncome, TotalExpenditure: ie.TotalExpenditure}
}

// ToAnalysisResponse converts the cache row to a response DTO
func ToAnalysisResponse(a *domain.IncomeExpenditureAnalysis) AnalysisResponse {
	return AnalysisResponse{TotalIncome: a.TotalIncome, TotalExpenditure: a.TotalExpenditure, LastUpdatedAt: a.LastUpdatedAt}
}

package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// IncomeExpenditureAnalysis caches a user's running income and expenditure totals.
// It is always re-derivable from the user's transactions.
type IncomeExpenditureAnalysis struct {
	AnalysisID       string          `json:"analysisID"`
	UserID           string          `json:"userID"` // Unique, FK -> users.user_id
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenditure decimal.Decimal `json:"totalExpenditure"`
	AuditFields
}

// AnalysisDelta is the change a transaction applies to the analysis cache.
type AnalysisDelta struct {
	Income      decimal.Decimal
	Expenditure decimal.Decimal
}

// IsZero reports whether applying the delta would change nothing.
func (d AnalysisDelta) IsZero() bool {
	return d.Income.IsZero() && d.Expenditure.IsZero()
}

// DeltaFor maps a transaction onto the analysis accumulators.
// Transfer-subtype rows touch neither side.
func DeltaFor(t Transaction) AnalysisDelta {
	switch t.Subtype {
	case Income:
		return AnalysisDelta{Income: t.Amount, Expenditure: decimal.Zero}
	case Expenditure:
		return AnalysisDelta{Income: decimal.Zero, Expenditure: t.Amount}
	default:
		return AnalysisDelta{Income: decimal.Zero, Expenditure: decimal.Zero}
	}
}

// IncomeExpenditure holds summed income and expenditure amounts.
type IncomeExpenditure struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenditure decimal.Decimal `json:"totalExpenditure"`
}

// MonthlySummary sums deposit and debit amounts for one calendar month.
type MonthlySummary struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	TotalDeposits decimal.Decimal `json:"totalDeposits"`
	TotalDebits   decimal.Decimal `json:"totalDebits"`
}

// SumIncomeExpenditure adds up the income and expenditure subtypes of txns.
func SumIncomeExpenditure(txns []Transaction) IncomeExpenditure {
	out := IncomeExpenditure{TotalIncome: decimal.Zero, TotalExpenditure: decimal.Zero}
	for _, t := range txns {
		d := DeltaFor(t)
		out.TotalIncome = out.TotalIncome.Add(d.Income)
		out.TotalExpenditure = out.TotalExpenditure.Add(d.Expenditure)
	}
	return out
}

// SummarizeMonthly groups txns by calendar month in loc, ascending.
// Months without transactions are omitted; a present month with no
// deposits or no debits reports zero for that side.
func SummarizeMonthly(txns []Transaction, loc *time.Location) []MonthlySummary {
	if loc == nil {
		loc = time.UTC
	}
	type key struct{ year, month int }
	buckets := make(map[key]*MonthlySummary)
	for _, t := range txns {
		local := t.CreatedAt.In(loc)
		k := key{local.Year(), int(local.Month())}
		b, ok := buckets[k]
		if !ok {
			b = &MonthlySummary{Year: k.year, Month: k.month, TotalDeposits: decimal.Zero, TotalDebits: decimal.Zero}
			buckets[k] = b
		}
		switch t.TransactionType {
		case Deposit:
			b.TotalDeposits = b.TotalDeposits.Add(t.Amount)
		case Debit:
			b.TotalDebits = b.TotalDebits.Add(t.Amount)
		}
	}

	out := make([]MonthlySummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	SortMonthly(out)
	return out
}

// SortMonthly orders summaries ascending by (year, month).
func SortMonthly(s []MonthlySummary) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Year != s[j].Year {
			return s[i].Year < s[j].Year
		}
		return s[i].Month < s[j].Month
	})
}

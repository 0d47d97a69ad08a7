package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeMonthly_MarchScenario(t *testing.T) {
	txns := []domain.Transaction{
		{Amount: dec("40.00"), TransactionType: domain.Deposit, Subtype: domain.Income, CreatedAt: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)},
		{Amount: dec("15.00"), TransactionType: domain.Debit, Subtype: domain.Expenditure, CreatedAt: time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)},
	}

	got := domain.SummarizeMonthly(txns, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, 2025, got[0].Year)
	assert.Equal(t, 3, got[0].Month)
	assert.True(t, got[0].TotalDeposits.Equal(dec("40.00")))
	assert.True(t, got[0].TotalDebits.Equal(dec("15.00")))
}

func TestSummarizeMonthly_OrderingAndZeroSides(t *testing.T) {
	txns := []domain.Transaction{
		{Amount: dec("5"), TransactionType: domain.Debit, CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: dec("7"), TransactionType: domain.Deposit, CreatedAt: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{Amount: dec("3"), TransactionType: domain.Debit, CreatedAt: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
	}

	got := domain.SummarizeMonthly(txns, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, []int{2024, 2025}, []int{got[0].Year, got[1].Year})
	assert.True(t, got[0].TotalDebits.IsZero())
	assert.True(t, got[1].TotalDeposits.IsZero())
	assert.True(t, got[1].TotalDebits.Equal(dec("8")))
}

func TestSummarizeMonthly_TimezoneShiftsMonth(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	txns := []domain.Transaction{
		{Amount: dec("1"), TransactionType: domain.Deposit, CreatedAt: time.Date(2025, 3, 31, 20, 0, 0, 0, time.UTC)},
	}
	got := domain.SummarizeMonthly(txns, loc)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Month)
}

func TestSumIncomeExpenditure(t *testing.T) {
	txns := []domain.Transaction{
		{Amount: dec("100"), Subtype: domain.Income},
		{Amount: dec("30"), Subtype: domain.Expenditure},
		{Amount: dec("20"), Subtype: domain.Transfer},
		{Amount: dec("0.50"), Subtype: domain.Income},
	}
	got := domain.SumIncomeExpenditure(txns)
	assert.True(t, got.TotalIncome.Equal(dec("100.50")))
	assert.True(t, got.TotalExpenditure.Equal(dec("30")))

	empty := domain.SumIncomeExpenditure(nil)
	assert.True(t, empty.TotalIncome.IsZero())
	assert.True(t, empty.TotalExpenditure.IsZero())
}

func TestDeltaFor(t *testing.T) {
	assert.True(t, domain.DeltaFor(domain.Transaction{Amount: dec("9"), Subtype: domain.Transfer}).IsZero())
	d := domain.DeltaFor(domain.Transaction{Amount: dec("9"), Subtype: domain.Expenditure})
	assert.True(t, d.Expenditure.Equal(dec("9")))
	assert.True(t, d.Income.IsZero())
}

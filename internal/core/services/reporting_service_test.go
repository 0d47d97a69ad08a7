package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	f     *ledgerFixture
	alice *domain.User
	bob   *domain.User
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	suite.alice, _ = suite.f.createUser(suite.T(), "Alice")
	suite.bob, _ = suite.f.createUser(suite.T(), "Bob")
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (suite *ReportingServiceTestSuite) debit(amount string) {
	_, err := suite.f.ledger.Debit(context.Background(), suite.alice.UserID,
		dto.AccountMovementRequest{Amount: dec(amount), Description: "groceries"})
	suite.Require().NoError(err)
}

func (suite *ReportingServiceTestSuite) TestMonthlyComparison_ThisMonth() {
	suite.f.credit(suite.T(), suite.alice.UserID, "40.00")
	suite.debit("15.00")

	rows, err := suite.f.reporting.MonthlyComparison(context.Background(), suite.alice.UserID,
		dto.MonthlyComparisonParams{Period: domain.PeriodThisMonth})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(2024, rows[0].Year)
	suite.Equal(3, rows[0].Month)
	suite.Equal("40.00", rows[0].TotalDeposits.StringFixed(2))
	suite.Equal("15.00", rows[0].TotalDebits.StringFixed(2))

	rows, err = suite.f.reporting.MonthlyComparison(context.Background(), suite.alice.UserID,
		dto.MonthlyComparisonParams{Period: domain.PeriodLastMonth})
	suite.Require().NoError(err)
	suite.Empty(rows)
}

func (suite *ReportingServiceTestSuite) TestMonthlyComparison_SpansMonthsAscending() {
	suite.f.credit(suite.T(), suite.alice.UserID, "100.00")
	suite.f.clock.Set(time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC))
	suite.debit("30.00")
	suite.f.clock.Set(time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC))
	suite.f.credit(suite.T(), suite.alice.UserID, "5.00")

	rows, err := suite.f.reporting.MonthlyComparison(context.Background(), suite.alice.UserID,
		dto.MonthlyComparisonParams{Period: domain.PeriodAll})

	suite.Require().NoError(err)
	suite.Require().Len(rows, 3)
	suite.Equal([]int{3, 4, 6}, []int{rows[0].Month, rows[1].Month, rows[2].Month})
	// April has no deposits but still reports the side as zero.
	suite.True(rows[1].TotalDeposits.IsZero())
	suite.Equal("30.00", rows[1].TotalDebits.StringFixed(2))
	suite.True(rows[2].TotalDebits.IsZero())
}

func (suite *ReportingServiceTestSuite) TestMonthlyComparison_ExplicitRangeWins() {
	suite.f.credit(suite.T(), suite.alice.UserID, "40.00")

	rows, err := suite.f.reporting.MonthlyComparison(context.Background(), suite.alice.UserID,
		dto.MonthlyComparisonParams{
			Period:          domain.PeriodThisMonth,
			DateRangeParams: dto.DateRangeParams{StartDate: "2024-02-01", EndDate: "2024-02-29"},
		})
	suite.Require().NoError(err)
	suite.Empty(rows)

	rows, err = suite.f.reporting.MonthlyComparison(context.Background(), suite.alice.UserID,
		dto.MonthlyComparisonParams{DateRangeParams: dto.DateRangeParams{StartDate: "2024-03-10", EndDate: "2024-03-10"}})
	suite.Require().NoError(err)
	suite.Len(rows, 1)
}

func (suite *ReportingServiceTestSuite) TestMonthlyComparison_RejectsBadInput() {
	ctx := context.Background()

	_, err := suite.f.reporting.MonthlyComparison(ctx, suite.alice.UserID,
		dto.MonthlyComparisonParams{DateRangeParams: dto.DateRangeParams{StartDate: "2024-03-01"}})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.reporting.MonthlyComparison(ctx, suite.alice.UserID,
		dto.MonthlyComparisonParams{Period: "fortnight"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.reporting.MonthlyComparison(ctx, suite.alice.UserID,
		dto.MonthlyComparisonParams{DateRangeParams: dto.DateRangeParams{StartDate: "03/01/2024", EndDate: "2024-03-31"}})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestIncomeExpenditure_CountsTransfersOnBothSides() {
	ctx := context.Background()
	suite.f.credit(suite.T(), suite.alice.UserID, "40.00")
	suite.debit("15.00")
	_, err := suite.f.ledger.Transfer(ctx, suite.alice.UserID,
		dto.TransferRequest{Destination: suite.bob.UserID, Amount: dec("5.00")})
	suite.Require().NoError(err)

	totals, err := suite.f.reporting.IncomeExpenditure(ctx, suite.alice.UserID, dto.DateRangeParams{})
	suite.Require().NoError(err)
	suite.Equal("40.00", totals.TotalIncome.StringFixed(2))
	suite.Equal("20.00", totals.TotalExpenditure.StringFixed(2))

	bobTotals, err := suite.f.reporting.IncomeExpenditure(ctx, suite.bob.UserID, dto.DateRangeParams{})
	suite.Require().NoError(err)
	suite.Equal("5.00", bobTotals.TotalIncome.StringFixed(2))

	outside, err := suite.f.reporting.IncomeExpenditure(ctx, suite.alice.UserID,
		dto.DateRangeParams{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	suite.Require().NoError(err)
	suite.True(outside.TotalIncome.IsZero())
	suite.True(outside.TotalExpenditure.IsZero())

	// The cached snapshot agrees with the ledger.
	snap, err := suite.f.reporting.AnalysisSnapshot(ctx, suite.alice.UserID)
	suite.Require().NoError(err)
	suite.True(snap.TotalIncome.Equal(totals.TotalIncome))
	suite.True(snap.TotalExpenditure.Equal(totals.TotalExpenditure))
}

func (suite *ReportingServiceTestSuite) TestRebuildAnalysis_RestoresDriftedCache() {
	ctx := context.Background()
	suite.f.credit(suite.T(), suite.alice.UserID, "40.00")
	suite.debit("15.00")

	err := suite.f.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.ReplaceAnalysisTotals(ctx, suite.alice.UserID,
			domain.IncomeExpenditure{TotalIncome: dec("1.00"), TotalExpenditure: dec("999.00")}, time.Now())
	})
	suite.Require().NoError(err)

	rebuilt, err := suite.f.reporting.RebuildAnalysis(ctx, suite.alice.UserID)

	suite.Require().NoError(err)
	suite.Equal("40.00", rebuilt.TotalIncome.StringFixed(2))
	suite.Equal("15.00", rebuilt.TotalExpenditure.StringFixed(2))
}

func (suite *ReportingServiceTestSuite) TestUnknownUserIsNotFound() {
	_, err := suite.f.reporting.IncomeExpenditure(context.Background(), "00000000-0000-0000-0000-000000000000", dto.DateRangeParams{})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

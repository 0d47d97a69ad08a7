package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
	analysisRepo  portsrepo.AnalysisReader
	txnRepo       portsrepo.TransactionReader
	txManager     portsrepo.TransactionManager
	loc           *time.Location
	weekStart     time.Weekday
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingCalendar sets the time zone and first weekday used to
// resolve periods and group months.
func WithReportingCalendar(loc *time.Location, weekStart time.Weekday) ReportingServiceOption {
	return func(s *reportingService) {
		if loc != nil {
			s.loc = loc
		}
		s.weekStart = weekStart
	}
}

// WithReportingClock overrides the clock periods are resolved against.
func WithReportingClock(clock func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.Clock = clock
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repos portsrepo.RepositoryProvider, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repos.ReportingRepo,
		accountRepo:   repos.AccountRepo,
		analysisRepo:  repos.AnalysisRepo,
		txnRepo:       repos.TransactionRepo,
		txManager:     repos.TxManager,
		loc:           time.UTC,
		weekStart:     time.Monday,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// explicitRange returns the inclusive range in p, or ok=false when p has none.
func (s *reportingService) explicitRange(p dto.DateRangeParams) (r domain.DateRange, ok bool, err error) {
	if p.StartDate == "" && p.EndDate == "" {
		return domain.DateRange{}, false, nil
	}
	if !p.HasRange() {
		return domain.DateRange{}, false, fmt.Errorf("%w: startDate and endDate must be given together", apperrors.ErrValidation)
	}
	r, err = domain.InclusiveDateRange(p.StartDate, p.EndDate, s.loc)
	if err != nil {
		return domain.DateRange{}, false, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return r, true, nil
}

// MonthlyComparison sums deposits and debits per month. An explicit date
// range wins over the period selector.
func (s *reportingService) MonthlyComparison(ctx context.Context, userID string, params dto.MonthlyComparisonParams) ([]domain.MonthlySummary, error) {
	r, ok, err := s.explicitRange(params.DateRangeParams)
	if err != nil {
		return nil, err
	}
	if !ok {
		r, err = domain.ResolvePeriod(params.Period, s.Now(), s.loc, s.weekStart)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	acc, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find account for report", slog.String("user_id", userID))
		return nil, err
	}

	rows, err := s.reportingRepo.GetMonthlySummaries(ctx, acc.AccountID, r, s.loc)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve monthly summaries", slog.String("account_id", acc.AccountID))
		return nil, fmt.Errorf("failed to retrieve monthly summaries: %w", err)
	}

	s.LogInfo(ctx, "Monthly comparison generated",
		slog.String("account_id", acc.AccountID),
		slog.String("period", string(params.Period)),
		slog.Int("month_count", len(rows)))
	return rows, nil
}

func (s *reportingService) IncomeExpenditure(ctx context.Context, userID string, params dto.DateRangeParams) (*domain.IncomeExpenditure, error) {
	r, _, err := s.explicitRange(params)
	if err != nil {
		return nil, err
	}
	acc, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find account for report", slog.String("user_id", userID))
		return nil, err
	}

	totals, err := s.reportingRepo.GetIncomeExpenditure(ctx, acc.AccountID, r)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve income and expenditure", slog.String("account_id", acc.AccountID))
		return nil, fmt.Errorf("failed to retrieve income and expenditure: %w", err)
	}
	return totals, nil
}

func (s *reportingService) AnalysisSnapshot(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error) {
	a, err := s.analysisRepo.FindAnalysisByUserID(ctx, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to load analysis", slog.String("user_id", userID))
		return nil, err
	}
	return a, nil
}

// RebuildAnalysis recomputes the cached totals from the ledger. The account
// stays locked while the ledger is summed, so no movement lands in between.
func (s *reportingService) RebuildAnalysis(ctx context.Context, userID string) (*domain.IncomeExpenditureAnalysis, error) {
	acc, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find account for rebuild", slog.String("user_id", userID))
		return nil, err
	}

	now := s.Now()
	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if _, err := tx.LockAccounts(ctx, acc.AccountID); err != nil {
			return err
		}
		txns, err := s.txnRepo.FindTransactionsInRange(ctx, acc.AccountID, domain.DateRange{})
		if err != nil {
			return fmt.Errorf("failed to read ledger: %w", err)
		}
		return tx.ReplaceAnalysisTotals(ctx, userID, domain.SumIncomeExpenditure(txns), now)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to rebuild analysis", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Analysis rebuilt", slog.String("user_id", userID))
	return s.analysisRepo.FindAnalysisByUserID(ctx, userID)
}

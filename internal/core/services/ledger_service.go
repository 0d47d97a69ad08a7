package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/google/uuid"
)

const defaultPageSize = 20

// ledgerService moves money between accounts and reads the ledger back.
type ledgerService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	userRepo    portsrepo.UserReader
	accountRepo portsrepo.AccountReader
	txnRepo     portsrepo.TransactionReader
	resolver    portssvc.DestinationResolverSvc
	guard       *BalanceGuard
	notifier    portssvc.Notifier
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerNotifier sets where committed ledger events are published.
func WithLedgerNotifier(n portssvc.Notifier) LedgerServiceOption {
	return func(s *ledgerService) {
		s.notifier = n
	}
}

// WithLedgerClock overrides the clock stamped on ledger rows.
func WithLedgerClock(clock func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Clock = clock
	}
}

// NewLedgerService creates a new ledger service with the provided options
func NewLedgerService(repos portsrepo.RepositoryProvider, resolver portssvc.DestinationResolverSvc, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txManager:   repos.TxManager,
		userRepo:    repos.UserRepo,
		accountRepo: repos.AccountRepo,
		txnRepo:     repos.TransactionRepo,
		resolver:    resolver,
		guard:       NewBalanceGuard(),
		notifier:    noopNotifier{},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// authorizeAccount returns the account the caller acts on. An empty
// accountID selects the caller's own account. Accounts the caller does not
// own are reported as unauthorized whether or not they exist.
func authorizeAccount(ctx context.Context, users portsrepo.UserReader, accounts portsrepo.AccountReader, callerID, accountID string) (*domain.Account, error) {
	caller, err := users.FindUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown caller", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load caller: %w", err)
	}
	if caller.IsBlocked {
		return nil, fmt.Errorf("%w: caller is blocked", apperrors.ErrUnauthorized)
	}

	if accountID == "" {
		acc, err := accounts.FindAccountByUserID(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to find account of caller: %w", err)
		}
		return acc, nil
	}

	acc, err := accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account not accessible", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if acc.UserID != callerID {
		return nil, fmt.Errorf("%w: account not accessible", apperrors.ErrUnauthorized)
	}
	return acc, nil
}

// postedEntry is a ledger row together with the user whose totals it feeds.
type postedEntry struct {
	userID string
	txn    domain.Transaction
}

// recordEntries appends ledger rows and the rows derived from them:
// analysis deltas and spending logs.
func recordEntries(ctx context.Context, tx portsrepo.LedgerTx, now time.Time, entries ...postedEntry) error {
	txns := make([]domain.Transaction, len(entries))
	for i, e := range entries {
		txns[i] = e.txn
	}
	if err := tx.InsertTransactions(ctx, txns...); err != nil {
		return fmt.Errorf("failed to insert ledger rows: %w", err)
	}

	for _, e := range entries {
		if delta := domain.DeltaFor(e.txn); !delta.IsZero() {
			if err := tx.ApplyAnalysisDelta(ctx, e.userID, delta, now); err != nil {
				return fmt.Errorf("failed to update analysis of user %s: %w", e.userID, err)
			}
		}
		if log, ok := domain.SpendingLogFor(uuid.NewString(), e.txn); ok {
			if err := tx.InsertSpendingLog(ctx, log); err != nil {
				return fmt.Errorf("failed to insert spending log: %w", err)
			}
		}
	}
	return nil
}

// Transfer implements portssvc.TransferSvc
func (s *ledgerService) Transfer(ctx context.Context, callerID string, req dto.TransferRequest) (*domain.TransferResult, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err)
	}
	if err := domain.ValidateDescription(req.Description); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	source, err := authorizeAccount(ctx, s.userRepo, s.accountRepo, callerID, req.SourceAccountID)
	if err != nil {
		s.LogFailure(ctx, err, "Transfer source rejected", slog.String("user_id", callerID))
		return nil, err
	}
	dest, err := s.resolver.ResolveDestination(ctx, req.Destination)
	if err != nil {
		s.LogFailure(ctx, err, "Transfer destination not resolved", slog.String("user_id", callerID))
		return nil, err
	}
	if source.AccountID == dest.AccountID {
		return nil, apperrors.ErrSelfTransfer
	}

	referenceID := uuid.NewString()
	now := s.Now()
	var result domain.TransferResult

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.guard.Lock(ctx, tx, source.AccountID, dest.AccountID)
		if err != nil {
			return err
		}
		src, dst := locked[source.AccountID], locked[dest.AccountID]

		debitLeg, err := src.Debit(req.Amount, domain.Expenditure, req.Description, referenceID, now)
		if err != nil {
			return err
		}
		creditLeg, err := dst.Credit(req.Amount, domain.Income, req.Description, referenceID, now)
		if err != nil {
			return err
		}
		if err := s.guard.Save(ctx, tx, now, src, dst); err != nil {
			return err
		}
		if err := recordEntries(ctx, tx, now,
			postedEntry{userID: src.UserID, txn: debitLeg},
			postedEntry{userID: dst.UserID, txn: creditLeg},
		); err != nil {
			return err
		}

		result = domain.TransferResult{
			ReferenceID:   referenceID,
			SourceBalance: src.Balance,
			DestBalance:   dst.Balance,
			DebitLeg:      debitLeg,
			CreditLeg:     creditLeg,
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Transfer failed",
			slog.String("reference_id", referenceID),
			slog.String("source_account_id", source.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Transfer completed",
		slog.String("reference_id", referenceID),
		slog.String("source_account_id", source.AccountID),
		slog.String("amount", req.Amount.StringFixed(domain.AmountScale)))
	s.notifier.Notify(ctx, domain.LedgerEvent{
		Type:          domain.EventTransferCompleted,
		ReferenceID:   referenceID,
		UserID:        callerID,
		AccountID:     source.AccountID,
		CounterpartID: dest.AccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		OccurredAt:    now,
	})
	return &result, nil
}

// Debit implements portssvc.AccountMovementSvc
func (s *ledgerService) Debit(ctx context.Context, callerID string, req dto.AccountMovementRequest) (*domain.MovementResult, error) {
	return s.move(ctx, callerID, req, domain.Debit)
}

// Credit implements portssvc.AccountMovementSvc
func (s *ledgerService) Credit(ctx context.Context, callerID string, req dto.AccountMovementRequest) (*domain.MovementResult, error) {
	return s.move(ctx, callerID, req, domain.Deposit)
}

// move mutates one account against the outside world. Debits are
// expenditure and credits income; no second account is touched.
func (s *ledgerService) move(ctx context.Context, callerID string, req dto.AccountMovementRequest, typ domain.TransactionType) (*domain.MovementResult, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err)
	}
	if err := domain.ValidateDescription(req.Description); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	acc, err := authorizeAccount(ctx, s.userRepo, s.accountRepo, callerID, req.AccountID)
	if err != nil {
		s.LogFailure(ctx, err, "Account movement rejected", slog.String("user_id", callerID))
		return nil, err
	}

	referenceID := uuid.NewString()
	now := s.Now()
	var result domain.MovementResult

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.guard.Lock(ctx, tx, acc.AccountID)
		if err != nil {
			return err
		}
		a := locked[acc.AccountID]

		var entry domain.Transaction
		if typ == domain.Debit {
			entry, err = a.Debit(req.Amount, domain.Expenditure, req.Description, referenceID, now)
		} else {
			entry, err = a.Credit(req.Amount, domain.Income, req.Description, referenceID, now)
		}
		if err != nil {
			return err
		}
		if err := s.guard.Save(ctx, tx, now, a); err != nil {
			return err
		}
		if err := recordEntries(ctx, tx, now, postedEntry{userID: a.UserID, txn: entry}); err != nil {
			return err
		}
		result = domain.MovementResult{Balance: a.Balance, Transaction: entry}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Account movement failed",
			slog.String("account_id", acc.AccountID),
			slog.String("transaction_type", string(typ)))
		return nil, err
	}

	eventType := domain.EventCreditCompleted
	if typ == domain.Debit {
		eventType = domain.EventDebitCompleted
	}
	s.LogInfo(ctx, "Account movement completed",
		slog.String("account_id", acc.AccountID),
		slog.String("transaction_type", string(typ)))
	s.notifier.Notify(ctx, domain.LedgerEvent{
		Type:        eventType,
		ReferenceID: referenceID,
		UserID:      callerID,
		AccountID:   acc.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
		OccurredAt:  now,
	})
	return &result, nil
}

// ListTransactions implements portssvc.TransactionReaderSvc
func (s *ledgerService) ListTransactions(ctx context.Context, callerID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	acc, err := s.accountRepo.FindAccountByUserID(ctx, callerID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find account for listing", slog.String("user_id", callerID))
		return nil, fmt.Errorf("failed to find account of caller: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	txns, nextToken, err := s.txnRepo.ListTransactionsByAccountID(ctx, acc.AccountID, limit, params.NextToken)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list transactions", slog.String("account_id", acc.AccountID))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	resp := dto.ToListTransactionsResponse(txns, nextToken)
	return &resp, nil
}

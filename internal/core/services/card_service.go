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

// cardNumberAttempts bounds retries after a generated card number collides.
const cardNumberAttempts = 3

// cardService issues cards and moves money into their sub-balances.
type cardService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	userRepo    portsrepo.UserReader
	accountRepo portsrepo.AccountReader
	cardRepo    portsrepo.CardReader
	guard       *BalanceGuard
	notifier    portssvc.Notifier
}

// CardServiceOption is a functional option for configuring the card service
type CardServiceOption func(*cardService)

// WithCardNotifier sets where committed card events are published.
func WithCardNotifier(n portssvc.Notifier) CardServiceOption {
	return func(s *cardService) {
		s.notifier = n
	}
}

// WithCardClock overrides the clock used for issue dates and ledger rows.
func WithCardClock(clock func() time.Time) CardServiceOption {
	return func(s *cardService) {
		s.Clock = clock
	}
}

// NewCardService creates a new card service with the provided options
func NewCardService(repos portsrepo.RepositoryProvider, options ...CardServiceOption) portssvc.CardSvcFacade {
	svc := &cardService{
		txManager:   repos.TxManager,
		userRepo:    repos.UserRepo,
		accountRepo: repos.AccountRepo,
		cardRepo:    repos.CardRepo,
		guard:       NewBalanceGuard(),
		notifier:    noopNotifier{},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CardSvcFacade = (*cardService)(nil)

func (s *cardService) ListCards(ctx context.Context, callerID string) ([]domain.Card, error) {
	acc, err := s.accountRepo.FindAccountByUserID(ctx, callerID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find account for cards", slog.String("user_id", callerID))
		return nil, err
	}
	cards, err := s.cardRepo.ListCardsByAccountID(ctx, acc.AccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list cards", slog.String("account_id", acc.AccountID))
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (s *cardService) GetLatestCard(ctx context.Context, callerID string) (*domain.Card, error) {
	acc, err := s.accountRepo.FindAccountByUserID(ctx, callerID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find account for cards", slog.String("user_id", callerID))
		return nil, err
	}
	card, err := s.cardRepo.FindLatestCardByAccountID(ctx, acc.AccountID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find latest card", slog.String("account_id", acc.AccountID))
		return nil, err
	}
	return card, nil
}

func (s *cardService) CreateCard(ctx context.Context, callerID string, req dto.CreateCardRequest) (*domain.Card, error) {
	if !req.Issuer.IsValid() {
		return nil, fmt.Errorf("%w: unknown card issuer %q", apperrors.ErrValidation, req.Issuer)
	}
	user, err := s.userRepo.FindUserByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown caller", apperrors.ErrUnauthorized)
	}
	if user.IsBlocked {
		return nil, fmt.Errorf("%w: caller is blocked", apperrors.ErrUnauthorized)
	}
	acc, err := s.accountRepo.FindAccountByUserID(ctx, callerID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find account for new card", slog.String("user_id", callerID))
		return nil, err
	}

	existing, err := s.cardRepo.ListCardsByAccountID(ctx, acc.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	for _, c := range existing {
		if c.Issuer == req.Issuer {
			return nil, fmt.Errorf("%w: a %s card already exists on this account", apperrors.ErrDuplicate, req.Issuer)
		}
	}

	for attempt := 1; ; attempt++ {
		card, err := domain.NewCard(uuid.NewString(), acc.AccountID, user.FullName, req.Issuer, req.CardType, s.Now(), nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			return tx.InsertCard(ctx, card)
		})
		if err == nil {
			s.LogInfo(ctx, "Card issued",
				slog.String("card_id", card.CardID),
				slog.String("issuer", string(card.Issuer)))
			return &card, nil
		}
		// A concurrent request for the same issuer also surfaces as a duplicate;
		// retries then keep failing and the duplicate is reported.
		if !errors.Is(err, apperrors.ErrDuplicate) || attempt == cardNumberAttempts {
			s.LogFailure(ctx, err, "Failed to issue card", slog.String("account_id", acc.AccountID))
			return nil, err
		}
	}
}

// FundCard moves amount from the account to the card. The account row is
// locked before the card row.
func (s *cardService) FundCard(ctx context.Context, callerID string, req dto.FundCardRequest) (*domain.FundResult, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err)
	}
	acc, err := authorizeAccount(ctx, s.userRepo, s.accountRepo, callerID, req.AccountID)
	if err != nil {
		s.LogFailure(ctx, err, "Card funding source rejected", slog.String("user_id", callerID))
		return nil, err
	}

	referenceID := uuid.NewString()
	now := s.Now()
	var result domain.FundResult

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := s.guard.Lock(ctx, tx, acc.AccountID)
		if err != nil {
			return err
		}
		a := locked[acc.AccountID]

		card, err := tx.LockCard(ctx, req.CardID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: card not accessible", apperrors.ErrUnauthorized)
			}
			return err
		}
		if card.AccountID != a.AccountID {
			return fmt.Errorf("%w: card not accessible", apperrors.ErrUnauthorized)
		}

		entry, err := a.Debit(req.Amount, domain.Transfer, domain.CardFundingDescription, referenceID, now)
		if err != nil {
			return err
		}
		if err := s.guard.Save(ctx, tx, now, a); err != nil {
			return err
		}
		cardBalance := card.CardBalance.Add(req.Amount)
		if err := domain.ValidateBalance(cardBalance); err != nil {
			return fmt.Errorf("%w: card: %v", apperrors.ErrInvalidAmount, err)
		}
		if err := tx.SetCardBalance(ctx, card.CardID, cardBalance, now); err != nil {
			return fmt.Errorf("failed to update card balance: %w", err)
		}
		if err := recordEntries(ctx, tx, now, postedEntry{userID: a.UserID, txn: entry}); err != nil {
			return err
		}

		result = domain.FundResult{CardBalance: cardBalance, AccountBalance: a.Balance, Transaction: entry}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Card funding failed",
			slog.String("account_id", acc.AccountID),
			slog.String("card_id", req.CardID))
		return nil, err
	}

	s.LogInfo(ctx, "Card funded", slog.String("card_id", req.CardID), slog.String("reference_id", referenceID))
	s.notifier.Notify(ctx, domain.LedgerEvent{
		Type:          domain.EventCardFunded,
		ReferenceID:   referenceID,
		UserID:        callerID,
		AccountID:     acc.AccountID,
		CounterpartID: req.CardID,
		Amount:        req.Amount,
		Description:   domain.CardFundingDescription,
		OccurredAt:    now,
	})
	return &result, nil
}

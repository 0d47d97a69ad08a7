package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/SscSPs/ewallet_ledger/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type userService struct {
	BaseService
	userRepo  portsrepo.UserReader
	txManager portsrepo.TransactionManager
	notifier  portssvc.Notifier
}

// UserServiceOption is a functional option for configuring the user service
type UserServiceOption func(*userService)

// WithUserNotifier sets where user lifecycle events are published.
func WithUserNotifier(n portssvc.Notifier) UserServiceOption {
	return func(s *userService) {
		s.notifier = n
	}
}

// WithUserClock overrides the clock used for audit timestamps.
func WithUserClock(clock func() time.Time) UserServiceOption {
	return func(s *userService) {
		s.Clock = clock
	}
}

// NewUserService creates a new user service with the provided options
func NewUserService(repos portsrepo.RepositoryProvider, options ...UserServiceOption) portssvc.UserSvcFacade {
	svc := &userService{
		userRepo:  repos.UserRepo,
		txManager: repos.TxManager,
		notifier:  noopNotifier{},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser stores the user and, unless the user is a superuser, their
// account, analysis row and first card, all in one unit.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
		IsSuperuser:  req.IsSuperuser,
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	var (
		account  domain.Account
		card     domain.Card
		analysis domain.IncomeExpenditureAnalysis
	)
	if user.NeedsAccount() {
		number, err := domain.DeriveAccountNumber(user.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		account = domain.Account{
			AccountID:     uuid.NewString(),
			UserID:        user.UserID,
			Name:          domain.AccountNameFor(user.FullName),
			AccountNumber: number,
			Balance:       decimal.Zero,
			AuditFields:   user.AuditFields,
		}
		analysis = domain.IncomeExpenditureAnalysis{
			AnalysisID:       uuid.NewString(),
			UserID:           user.UserID,
			TotalIncome:      decimal.Zero,
			TotalExpenditure: decimal.Zero,
			AuditFields:      user.AuditFields,
		}
		issuer, err := domain.RandomIssuer(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to pick card issuer: %w", err)
		}
		card, err = domain.NewCard(uuid.NewString(), account.AccountID, user.FullName, issuer, domain.DebitCard, now, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to generate card: %w", err)
		}
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.InsertUser(ctx, user); err != nil {
			return err
		}
		if !user.NeedsAccount() {
			return nil
		}
		if err := tx.InsertAccount(ctx, account); err != nil {
			return err
		}
		if err := tx.InsertAnalysis(ctx, analysis); err != nil {
			return err
		}
		return tx.InsertCard(ctx, card)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create user", slog.String("email", email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID), slog.Bool("superuser", user.IsSuperuser))
	s.notifier.Notify(ctx, domain.LedgerEvent{
		Type:       domain.EventUserCreated,
		UserID:     user.UserID,
		AccountID:  account.AccountID,
		Amount:     decimal.Zero,
		OccurredAt: now,
	})
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser lets users delete themselves and superusers delete anyone.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if userID != requestingUserID {
		requester, err := s.userRepo.FindUserByID(ctx, requestingUserID)
		if err != nil || !requester.IsSuperuser {
			return fmt.Errorf("%w: cannot delete another user", apperrors.ErrUnauthorized)
		}
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID), slog.String("requested_by", requestingUserID))
	return nil
}

// AuthenticateUser checks credentials. Unknown emails and wrong passwords
// produce the same error.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		s.LogError(ctx, err, "Failed to load user for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	if user.IsBlocked {
		return nil, fmt.Errorf("%w: user is blocked", apperrors.ErrUnauthorized)
	}
	return user, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	userRepo    portsrepo.UserReader
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountReader, userRepo portsrepo.UserReader) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return acc, nil
}

// ResolveDestination accepts either a bare customer id or the text of a
// scanned identity payload.
func (s *accountService) ResolveDestination(ctx context.Context, selector string) (*domain.Account, error) {
	userID, err := customerIDFromSelector(selector)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("customer: %w", apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "Failed to load customer", slog.String("customer_id", userID))
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	acc, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("customer account: %w", apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "Failed to load customer account", slog.String("customer_id", userID))
		return nil, fmt.Errorf("failed to load customer account: %w", err)
	}
	return acc, nil
}

func customerIDFromSelector(selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if domain.IsIdentityPayload(selector) {
		id, err := domain.ParseIdentityPayload(selector)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		return id, nil
	}
	if _, err := uuid.Parse(selector); err != nil {
		return "", fmt.Errorf("%w: customer id must be a UUID", apperrors.ErrValidation)
	}
	return selector, nil
}

func (s *accountService) IdentityPayload(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to load user for identity payload", slog.String("user_id", userID))
		return "", err
	}
	return domain.BuildIdentityPayload(*user), nil
}

func (s *accountService) ScanIdentity(ctx context.Context, payload string) (*domain.User, error) {
	userID, err := domain.ParseIdentityPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		s.LogFailure(ctx, err, "Scanned identity did not resolve", slog.String("customer_id", userID))
		return nil, err
	}
	return user, nil
}

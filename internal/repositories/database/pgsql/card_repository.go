package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/models"
	"github.com/SscSPs/ewallet_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const cardColumns = `card_id, account_id, issuer, card_type, card_number, card_holder_name, expiry_date, cvv, card_balance, created_at, last_updated_at`

func scanCard(row pgx.Row) (models.Card, error) {
	var m models.Card
	err := row.Scan(
		&m.CardID,
		&m.AccountID,
		&m.Issuer,
		&m.CardType,
		&m.CardNumber,
		&m.CardHolderName,
		&m.ExpiryDate,
		&m.CVV,
		&m.CardBalance,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

type cardRepository struct {
	db querier
}

func newCardRepository(db querier) *cardRepository {
	return &cardRepository{db: db}
}

var _ portsrepo.CardReader = (*cardRepository)(nil)

func (r *cardRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Card, error) {
	m, err := scanCard(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card: %w", translateError(err))
	}
	c := mapping.ToDomainCard(m)
	return &c, nil
}

func (r *cardRepository) FindCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	return r.findOne(ctx, `SELECT `+cardColumns+` FROM cards WHERE card_id = $1;`, cardID)
}

func (r *cardRepository) FindLatestCardByAccountID(ctx context.Context, accountID string) (*domain.Card, error) {
	return r.findOne(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE account_id = $1
		ORDER BY created_at DESC, card_id DESC
		LIMIT 1;`, accountID)
}

func (r *cardRepository) ListCardsByAccountID(ctx context.Context, accountID string) ([]domain.Card, error) {
	query := `
		SELECT ` + cardColumns + ` FROM cards
		WHERE account_id = $1
		ORDER BY created_at ASC, card_id ASC;
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards for account %s: %w", accountID, err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		m, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}
	return mapping.ToDomainCardSlice(cards), nil
}

func (r *cardRepository) lockCard(ctx context.Context, cardID string) (*domain.Card, error) {
	return r.findOne(ctx, `SELECT `+cardColumns+` FROM cards WHERE card_id = $1 FOR UPDATE;`, cardID)
}

func (r *cardRepository) setBalance(ctx context.Context, cardID string, balance decimal.Decimal, now time.Time) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: card %s balance would be %s", apperrors.ErrInsufficientFunds, cardID, balance.String())
	}
	ct, err := r.db.Exec(ctx, `UPDATE cards SET card_balance = $2, last_updated_at = $3 WHERE card_id = $1;`, cardID, balance, now)
	if err != nil {
		return fmt.Errorf("failed to update balance for card %s: %w", cardID, translateError(err))
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: card %s not found during balance update", apperrors.ErrNotFound, cardID)
	}
	return nil
}

func (r *cardRepository) insertCard(ctx context.Context, card domain.Card) error {
	m := mapping.ToModelCard(card)
	query := `
		INSERT INTO cards (card_id, account_id, issuer, card_type, card_number, card_holder_name, expiry_date, cvv, card_balance, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		m.CardID,
		m.AccountID,
		m.Issuer,
		m.CardType,
		m.CardNumber,
		m.CardHolderName,
		m.ExpiryDate,
		m.CVV,
		m.CardBalance,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save card %s: %w", m.CardID, translateError(err))
	}
	return nil
}

package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/ewallet_ledger/internal/models"
	"github.com/SscSPs/ewallet_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, full_name, email, phone_number, password_hash, is_superuser, is_verified, is_blocked, created_at, last_updated_at, deleted_at`

func scanUser(row pgx.Row) (models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.FullName,
		&m.Email,
		&m.PhoneNumber,
		&m.PasswordHash,
		&m.IsSuperuser,
		&m.IsVerified,
		&m.IsBlocked,
		&m.CreatedAt,
		&m.LastUpdatedAt,
		&m.DeletedAt,
	)
	return m, err
}

type userRepository struct {
	db querier
}

func newUserRepository(db querier) *userRepository {
	return &userRepository{db: db}
}

var _ portsrepo.UserReader = (*userRepository)(nil)

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	m, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL;`
	m, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

func (r *userRepository) insertUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (user_id, full_name, email, phone_number, password_hash, is_superuser, is_verified, is_blocked, created_at, last_updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		m.UserID,
		m.FullName,
		m.Email,
		m.PhoneNumber,
		m.PasswordHash,
		m.IsSuperuser,
		m.IsVerified,
		m.IsBlocked,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", m.UserID, translateError(err))
	}
	return nil
}

// deleteUser removes the user and everything hanging off their account in
// one batch. The caller must already hold the account lock.
func (r *userRepository) deleteUser(ctx context.Context, userID string) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		DELETE FROM spending_logs WHERE transaction_id IN (
			SELECT t.transaction_id FROM transactions t
			JOIN accounts a ON a.account_id = t.account_id
			WHERE a.user_id = $1);`, userID)
	batch.Queue(`DELETE FROM transactions WHERE account_id IN (SELECT account_id FROM accounts WHERE user_id = $1);`, userID)
	batch.Queue(`DELETE FROM cards WHERE account_id IN (SELECT account_id FROM accounts WHERE user_id = $1);`, userID)
	batch.Queue(`DELETE FROM accounts WHERE user_id = $1;`, userID)
	batch.Queue(`DELETE FROM income_expenditure_analyses WHERE user_id = $1;`, userID)
	batch.Queue(`DELETE FROM users WHERE user_id = $1;`, userID)

	br := r.db.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to delete user %s (step %d): %w", userID, i+1, translateError(err))
			}
			continue
		}
		if i == batch.Len()-1 && ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close user delete batch: %w", err)
	}
	return batchErr
}

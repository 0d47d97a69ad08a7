package pgsql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound},
		{"unique", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "users_email_lower_unique"}, apperrors.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation}, apperrors.ErrNotFound},
		{"account balance check", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "accounts_balance_non_negative"}, apperrors.ErrInsufficientFunds},
		{"card balance check", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "cards_card_balance_non_negative"}, apperrors.ErrInsufficientFunds},
		{"other check", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "transactions_amount_positive"}, apperrors.ErrValidation},
		{"numeric overflow", &pgconn.PgError{Code: codeNumericOverflow, Message: "numeric field overflow"}, apperrors.ErrInvalidAmount},
		{"serialization", &pgconn.PgError{Code: codeSerializationFailure}, apperrors.ErrStorageConflict},
		{"deadlock", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: codeDeadlockDetected}), apperrors.ErrStorageConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tc.in), tc.want)
		})
	}

	assert.NoError(t, translateError(nil))
	assert.Same(t, plain, translateError(plain))
	assert.False(t, apperrors.IsRetryable(translateError(&pgconn.PgError{Code: codeUniqueViolation})))
	assert.True(t, apperrors.IsRetryable(translateError(&pgconn.PgError{Code: codeSerializationFailure})))
}

func TestWithIsolation(t *testing.T) {
	tests := map[string]pgx.TxIsoLevel{
		"serializable":    pgx.Serializable,
		"repeatable read": pgx.RepeatableRead,
		"read committed":  pgx.ReadCommitted,
		"":                pgx.Serializable,
	}
	for in, want := range tests {
		s := NewLedgerStore(nil, WithIsolation(in))
		assert.Equal(t, want, s.isoLevel, in)
	}

	s := NewLedgerStore(nil, WithConflictRetries(5))
	assert.Equal(t, 5, s.maxRetries)
	s = NewLedgerStore(nil, WithConflictRetries(-1))
	assert.Equal(t, 2, s.maxRetries)
}

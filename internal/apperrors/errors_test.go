package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestAppError_UnwrapsCause(t *testing.T) {
	err := apperrors.NewAppError(500, "failed to commit", apperrors.ErrStorageConflict)

	assert.ErrorIs(t, err, apperrors.ErrStorageConflict)
	assert.Equal(t, "failed to commit: storage conflict, retry the request", err.Error())
}

func TestAppError_NilCause(t *testing.T) {
	err := apperrors.NewAppError(400, "bad input", nil)
	assert.Equal(t, "bad input", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"conflict", apperrors.ErrStorageConflict, true},
		{"wrapped conflict", fmt.Errorf("transfer: %w", apperrors.ErrStorageConflict), true},
		{"app error conflict", apperrors.NewAppError(409, "conflict", apperrors.ErrStorageConflict), true},
		{"insufficient funds", apperrors.ErrInsufficientFunds, false},
		{"not found", apperrors.ErrNotFound, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.IsRetryable(tt.err))
		})
	}
}

func TestErrSelfTransfer_IsValidation(t *testing.T) {
	assert.ErrorIs(t, apperrors.ErrSelfTransfer, apperrors.ErrValidation)
	assert.False(t, apperrors.IsRetryable(apperrors.ErrSelfTransfer))
}

package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller may not act on the requested resource.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInsufficientFunds indicates that a debit would take a balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidAmount indicates a non-positive, over-precise or overflowing amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrSelfTransfer indicates a transfer whose source and destination are the same account.
var ErrSelfTransfer = fmt.Errorf("%w: cannot transfer to the same account", ErrValidation)

// ErrStorageConflict indicates that the store aborted a unit of work because of a
// concurrent conflicting unit. Nothing was written; the request can be retried.
var ErrStorageConflict = errors.New("storage conflict, retry the request")

// AppError carries a status code and message alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err may be retried as a fresh request.
// Only storage conflicts qualify; every other kind is terminal for the request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageConflict)
}

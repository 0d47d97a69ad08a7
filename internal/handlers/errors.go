package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ewallet_ledger/internal/apperrors"
	"github.com/SscSPs/ewallet_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	// Retryable is set when the request lost a race and may be resent as is.
	Retryable bool `json:"retryable,omitempty"`
}

// statusFor maps an application error onto an HTTP status and a message that
// is safe to show the caller. Not-found messages stay generic so ids of
// accounts the caller does not own never leak.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrStorageConflict):
		return http.StatusConflict, "The request conflicted with a concurrent one, please retry"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "Insufficient funds"
	case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict, "Resource already exists"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden, "Forbidden"
	}
	return http.StatusInternalServerError, ""
}

// respondError logs err and writes the mapped error response.
func respondError(c *gin.Context, err error, failure string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(failure, slog.String("error", err.Error()))
		msg = failure
	} else {
		logger.Warn(failure, slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, ErrorResponse{Error: msg, Retryable: apperrors.IsRetryable(err)})
}

// badRequest answers a request that failed binding.
func badRequest(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
}

// callerID returns the authenticated user id, answering 401 when it is missing.
func callerID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Caller user ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/SscSPs/ewallet_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles money movements and transaction history.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers ledger routes. Money-moving routes sit
// behind limit.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, limit gin.HandlerFunc) {
	h := newLedgerHandler(ledgerService)

	rg.POST("/transfers", limit, h.transfer)
	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listTransactions)
		txns.POST("/debit", limit, h.debit)
		txns.POST("/credit", limit, h.credit)
	}
}

// transfer godoc
// @Summary Transfer money to another customer
// @Description Debits the caller's account and credits the destination in one atomic unit
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Destination (customer id or identity payload), amount and description"
// @Success 200 {object} dto.TransferResponse
// @Failure 400 {object} ErrorResponse "Invalid amount or destination"
// @Failure 403 {object} ErrorResponse "Caller may not debit the source"
// @Failure 404 {object} ErrorResponse "Destination not found"
// @Failure 409 {object} ErrorResponse "Concurrent conflict, retry"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /transfers [post]
func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.ledgerService.Transfer(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to transfer")
		return
	}

	logger.Info("Transfer completed", slog.String("reference_id", result.ReferenceID))
	c.JSON(http.StatusOK, dto.ToTransferResponse(result))
}

// debit godoc
// @Summary Withdraw from the caller's account
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   debit body dto.AccountMovementRequest true "Amount and description"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 409 {object} ErrorResponse "Concurrent conflict, retry"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /transactions/debit [post]
func (h *ledgerHandler) debit(c *gin.Context) {
	h.movement(c, h.ledgerService.Debit, "Failed to debit account")
}

// credit godoc
// @Summary Top up the caller's account
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   credit body dto.AccountMovementRequest true "Amount and description"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} ErrorResponse "Invalid amount"
// @Failure 409 {object} ErrorResponse "Concurrent conflict, retry"
// @Security BearerAuth
// @Router /transactions/credit [post]
func (h *ledgerHandler) credit(c *gin.Context) {
	h.movement(c, h.ledgerService.Credit, "Failed to credit account")
}

// movementFunc is the shape shared by Debit and Credit.
type movementFunc func(ctx context.Context, callerID string, req dto.AccountMovementRequest) (*domain.MovementResult, error)

func (h *ledgerHandler) movement(c *gin.Context, op movementFunc, failure string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.AccountMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := op(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, failure)
		return
	}

	logger.Info("Account movement completed",
		slog.String("transaction_id", result.Transaction.TransactionID),
		slog.String("type", string(result.Transaction.TransactionType)))
	c.JSON(http.StatusOK, dto.ToMovementResponse(result))
}

// listTransactions godoc
// @Summary List the caller's transactions
// @Description Newest first, cursor paginated
// @Tags ledger
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse "Invalid query or cursor"
// @Security BearerAuth
// @Router /transactions [get]
func (h *ledgerHandler) listTransactions(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.ledgerService.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

package dto

import (
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRequest defines the data needed to move money to another customer.
type TransferRequest struct {
	// SourceAccountID defaults to the caller's own account.
	SourceAccountID string `json:"sourceAccountID"`
	// Destination is a customer id or a scanned identity payload.
	Destination string          `json:"destination" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,money"`
	Description string          `json:"description" binding:"max=50"`
}

// AccountMovementRequest defines a single-account debit or credit.
type AccountMovementRequest struct {
	// AccountID defaults to the caller's own account.
	AccountID   string          `json:"accountID"`
	Amount      decimal.Decimal `json:"amount" binding:"required,money"`
	Description string          `json:"description" binding:"max=50"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID   string                    `json:"transactionID"`
	AccountID       string                    `json:"accountID"`
	Amount          decimal.Decimal           `json:"amount"`
	AmountBefore    decimal.Decimal           `json:"amountBefore"`
	AmountAfter     decimal.Decimal           `json:"amountAfter"`
	TransactionType domain.TransactionType    `json:"transactionType"`
	Subtype         domain.TransactionSubtype `json:"subtype"`
	Description     string                    `json:"description"`
	ReferenceID     string                    `json:"referenceID"`
	CreatedAt       time.Time                 `json:"createdAt"`
}

// TransferResponse is returned by POST /transfers.
type TransferResponse struct {
	ReferenceID   string          `json:"referenceID"`
	SourceBalance decimal.Decimal `json:"sourceBalance"`
	DestBalance   decimal.Decimal `json:"destBalance"`
}

// MovementResponse is returned by the debit and credit endpoints.
type MovementResponse struct {
	Balance     decimal.Decimal     `json:"balance"`
	Transaction TransactionResponse `json:"transaction"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		AccountID:       t.AccountID,
		Amount:          t.Amount,
		AmountBefore:    t.AmountBefore,
		AmountAfter:     t.AmountAfter,
		TransactionType: t.TransactionType,
		Subtype:         t.Subtype,
		Description:     t.Description,
		ReferenceID:     t.ReferenceID,
		CreatedAt:       t.CreatedAt,
	}
}

// ToListTransactionsResponse converts a page of domain transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(t)
	}
	return ListTransactionsResponse{Transactions: res, NextToken: nextToken}
}

// ToTransferResponse converts a domain.TransferResult to TransferResponse DTO
func ToTransferResponse(r *domain.TransferResult) TransferResponse {
	return TransferResponse{ReferenceID: r.ReferenceID, SourceBalance: r.SourceBalance, DestBalance: r.DestBalance}
}

// ToMovementResponse converts a domain.MovementResult to MovementResponse DTO
func ToMovementResponse(r *domain.MovementResult) MovementResponse {
	return MovementResponse{Balance: r.Balance, Transaction: ToTransactionResponse(r.Transaction)}
}

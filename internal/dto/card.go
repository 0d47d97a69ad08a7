package dto

import (
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCardRequest defines the data needed to issue a card.
type CreateCardRequest struct {
	Issuer   domain.CardIssuer `json:"issuer" binding:"required,oneof=visa mastercard amex discover rupay"`
	CardType domain.CardType   `json:"cardType" binding:"omitempty,oneof=debit credit"`
}

// FundCardRequest defines a transfer from an account into one of its cards.
type FundCardRequest struct {
	// AccountID defaults to the caller's own account.
	AccountID string          `json:"accountID"`
	CardID    string          `json:"cardID" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" binding:"required,money"`
}

// CardResponse defines the data returned for a card.
type CardResponse struct {
	CardID         string            `json:"cardID"`
	Issuer         domain.CardIssuer `json:"issuer"`
	CardType       domain.CardType   `json:"cardType"`
	CardNumber     string            `json:"cardNumber"`
	CardHolderName string            `json:"cardHolderName"`
	ExpiryDate     time.Time         `json:"expiryDate"`
	CVV            string            `json:"cvv,omitempty"`
	CardBalance    decimal.Decimal   `json:"cardBalance"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// FundCardResponse is returned by POST /cards/fund.
type FundCardResponse struct {
	Message        string          `json:"message"`
	CardBalance    decimal.Decimal `json:"cardBalance"`
	AccountBalance decimal.Decimal `json:"accountBalance"`
}

// ToCardResponse converts a domain.Card to CardResponse DTO. The CVV is only
// included when withCVV is set, which is the issuing response.
func ToCardResponse(c *domain.Card, withCVV bool) CardResponse {
	res := CardResponse{
		CardID:         c.CardID,
		Issuer:         c.Issuer,
		CardType:       c.CardType,
		CardNumber:     c.CardNumber,
		CardHolderName: c.CardHolderName,
		ExpiryDate:     c.ExpiryDate,
		CardBalance:    c.CardBalance,
		CreatedAt:      c.CreatedAt,
	}
	if withCVV {
		res.CVV = c.CVV
	}
	return res
}

// ToListCardResponse converts a slice of domain.Card to CardResponse DTOs
func ToListCardResponse(cards []domain.Card) []CardResponse {
	res := make([]CardResponse, len(cards))
	for i := range cards {
		res[i] = ToCardResponse(&cards[i], false)
	}
	return res
}

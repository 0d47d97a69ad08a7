package domain

import "github.com/shopspring/decimal"

// TransferResult is returned by a committed two-party transfer.
type TransferResult struct {
	ReferenceID   string          `json:"referenceID"`
	SourceBalance decimal.Decimal `json:"sourceBalance"`
	DestBalance   decimal.Decimal `json:"destBalance"`
	DebitLeg      Transaction     `json:"debitLeg"`
	CreditLeg     Transaction     `json:"creditLeg"`
}

// MovementResult is returned by a committed single-account debit or credit.
type MovementResult struct {
	Balance     decimal.Decimal `json:"balance"`
	Transaction Transaction     `json:"transaction"`
}

// FundResult is returned by a committed card funding.
type FundResult struct {
	CardBalance    decimal.Decimal `json:"cardBalance"`
	AccountBalance decimal.Decimal `json:"accountBalance"`
	Transaction    Transaction     `json:"transaction"`
}

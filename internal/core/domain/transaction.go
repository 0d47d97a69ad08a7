package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction money flowed on the account.
type TransactionType string

const (
	Deposit TransactionType = "deposit"
	Debit   TransactionType = "debit"
)

// TransactionSubtype is the economic classification of a transaction.
type TransactionSubtype string

const (
	Income      TransactionSubtype = "income"
	Expenditure TransactionSubtype = "expenditure"
	Transfer    TransactionSubtype = "transfer"
)

// MaxDescriptionLength bounds the free-text description stored per transaction.
const MaxDescriptionLength = 50

// CardFundingDescription tags the audit row written when a card is funded.
const CardFundingDescription = "card_funding"

// Transaction is an immutable ledger entry recording one balance change on one account.
type Transaction struct {
	TransactionID   string             `json:"transactionID"` // Primary Key (UUID)
	AccountID       string             `json:"accountID"`     // FK -> accounts.account_id
	Amount          decimal.Decimal    `json:"amount"`        // Always positive
	AmountBefore    decimal.Decimal    `json:"amountBefore"`
	AmountAfter     decimal.Decimal    `json:"amountAfter"`
	TransactionType TransactionType    `json:"transactionType"`
	Subtype         TransactionSubtype `json:"subtype"`
	Description     string             `json:"description"`
	ReferenceID     string             `json:"referenceID"` // Shared by every leg of one logical operation
	CreatedAt       time.Time          `json:"createdAt"`
}

// Signed returns the amount with the sign it applies to the account balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.TransactionType == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate checks the before/after snapshots against the amount and type.
func (t Transaction) Validate() error {
	switch t.TransactionType {
	case Deposit, Debit:
	default:
		return fmt.Errorf("unknown transaction type %q", t.TransactionType)
	}
	switch t.Subtype {
	case Income, Expenditure, Transfer:
	default:
		return fmt.Errorf("unknown transaction subtype %q", t.Subtype)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount.String())
	}
	if !t.AmountBefore.Add(t.Signed()).Equal(t.AmountAfter) {
		return fmt.Errorf("transaction snapshot mismatch: %s %s %s != %s",
			t.AmountBefore.String(), t.TransactionType, t.Amount.String(), t.AmountAfter.String())
	}
	if t.AmountAfter.IsNegative() {
		return fmt.Errorf("transaction leaves a negative balance %s", t.AmountAfter.String())
	}
	return ValidateDescription(t.Description)
}

// ValidateDescription enforces the description length limit.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// SpendingLog mirrors one expenditure transaction for read convenience.
type SpendingLog struct {
	SpendingLogID string    `json:"spendingLogID"`
	TransactionID string    `json:"transactionID"` // Unique, FK -> transactions.transaction_id
	Category      string    `json:"category"`
	Timestamp     time.Time `json:"timestamp"`
}

// SpendingLogFor builds the log entry for an expenditure transaction.
// It returns false for any other subtype.
func SpendingLogFor(id string, t Transaction) (SpendingLog, bool) {
	if t.Subtype != Expenditure {
		return SpendingLog{}, false
	}
	return SpendingLog{
		SpendingLogID: id,
		TransactionID: t.TransactionID,
		Category:      t.Description,
		Timestamp:     t.CreatedAt,
	}, true
}

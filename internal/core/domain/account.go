package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// AccountNumberLength is the number of trailing phone digits used as the account number.
const AccountNumberLength = 10

// Account represents a user's custodial balance record.
type Account struct {
	AccountID     string          `json:"accountID"`     // Primary Key (UUID)
	UserID        string          `json:"userID"`        // FK -> users.user_id, unique (1:1)
	Name          string          `json:"name"`          // Display name
	AccountNumber string          `json:"accountNumber"` // Derived from the phone number, unique
	Balance       decimal.Decimal `json:"balance"`       // Scale 2, never negative
	AuditFields
}

// AccountNameFor returns the display name given to a new account.
func AccountNameFor(fullName string) string {
	return fmt.Sprintf("%s's Account", fullName)
}

// DeriveAccountNumber strips every non-digit from phone and keeps the last ten digits.
func DeriveAccountNumber(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", fmt.Errorf("phone number is required to generate an account number")
	}

	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < AccountNumberLength {
		return "", fmt.Errorf("invalid phone number: it must contain at least %d digits", AccountNumberLength)
	}
	return digits[len(digits)-AccountNumberLength:], nil
}

package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of fractional digits stored for every amount.
	AmountScale = 2
	// AmountMaxIntegerDigits matches NUMERIC(15,2) storage.
	AmountMaxIntegerDigits = 13
)

var amountCeiling = decimal.New(1, AmountMaxIntegerDigits)

// ValidateAmount checks that amount is strictly positive, has at most two
// fractional digits and fits in thirteen integer digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero, got %s", amount.String())
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("amount %s has more than %d decimal places", amount.String(), AmountScale)
	}
	if amount.GreaterThanOrEqual(amountCeiling) {
		return fmt.Errorf("amount %s exceeds %d integer digits", amount.String(), AmountMaxIntegerDigits)
	}
	return nil
}

// ParseAmount parses a decimal string and validates it with ValidateAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a decimal number", s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateBalance checks that a stored running value (an account or card
// balance, an analysis total) still fits in thirteen integer digits.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.Abs().GreaterThanOrEqual(amountCeiling) {
		return fmt.Errorf("balance %s exceeds %d integer digits", balance.String(), AmountMaxIntegerDigits)
	}
	return nil
}

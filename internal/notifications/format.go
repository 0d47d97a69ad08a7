package notifications

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
)

// summary renders an event as one human readable line for chat sinks.
// Account ids are shortened; chat channels are not a place for full ids.
func summary(e domain.LedgerEvent) string {
	var b strings.Builder
	switch e.Type {
	case domain.EventTransferCompleted:
		fmt.Fprintf(&b, "Transfer of %s from %s to %s", e.Amount.StringFixed(2), short(e.AccountID), short(e.CounterpartID))
	case domain.EventDebitCompleted:
		fmt.Fprintf(&b, "Debit of %s on %s", e.Amount.StringFixed(2), short(e.AccountID))
	case domain.EventCreditCompleted:
		fmt.Fprintf(&b, "Credit of %s on %s", e.Amount.StringFixed(2), short(e.AccountID))
	case domain.EventCardFunded:
		fmt.Fprintf(&b, "Card %s funded with %s from %s", short(e.CounterpartID), e.Amount.StringFixed(2), short(e.AccountID))
	case domain.EventUserCreated:
		fmt.Fprintf(&b, "New user %s", short(e.UserID))
	default:
		fmt.Fprintf(&b, "%s %s", e.Type, e.Amount.StringFixed(2))
	}
	if e.Description != "" {
		fmt.Fprintf(&b, " (%s)", e.Description)
	}
	fmt.Fprintf(&b, " at %s", e.OccurredAt.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

func short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

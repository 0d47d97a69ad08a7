package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names a ledger event published after commit.
type EventType string

const (
	EventTransferCompleted EventType = "transfer.completed"
	EventDebitCompleted    EventType = "debit.completed"
	EventCreditCompleted   EventType = "credit.completed"
	EventCardFunded        EventType = "card.funded"
	EventUserCreated       EventType = "user.created"
)

// LedgerEvent describes a committed ledger change for notification sinks.
type LedgerEvent struct {
	Type          EventType       `json:"type"`
	ReferenceID   string          `json:"referenceID"`
	UserID        string          `json:"userID"`
	AccountID     string          `json:"accountID,omitempty"`
	CounterpartID string          `json:"counterpartID,omitempty"` // Destination account or card
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

package services

import (
	"context"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
)

// Notifier accepts committed ledger events for asynchronous delivery.
// Notify never blocks and never reports delivery failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, event domain.LedgerEvent)
}

// NotificationSink delivers one event to one destination.
type NotificationSink interface {
	Name() string
	Deliver(ctx context.Context, event domain.LedgerEvent) error
}

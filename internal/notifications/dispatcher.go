// Package notifications delivers committed ledger events to outside systems.
// Delivery is asynchronous and best effort: a slow or failing sink never
// reaches the request that produced the event.
package notifications

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
)

// DefaultDeliveryTimeout bounds a single sink delivery.
const DefaultDeliveryTimeout = 5 * time.Second

type envelope struct {
	ctx   context.Context
	event domain.LedgerEvent
}

// Dispatcher fans events out to sinks from a bounded queue.
type Dispatcher struct {
	queue   chan envelope
	sinks   []portssvc.NotificationSink
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

var _ portssvc.Notifier = (*Dispatcher)(nil)

// NewDispatcher starts workers goroutines draining a queue of queueSize events.
func NewDispatcher(queueSize, workers int, logger *slog.Logger, sinks ...portssvc.NotificationSink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		queue:   make(chan envelope, queueSize),
		sinks:   sinks,
		logger:  logger,
		timeout: DefaultDeliveryTimeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	logger.Info("Notification dispatcher started",
		slog.Int("queue_size", queueSize), slog.Int("workers", workers), slog.Any("sinks", names))
	return d
}

// Notify queues event without blocking. A full queue drops the event.
func (d *Dispatcher) Notify(ctx context.Context, event domain.LedgerEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}
	select {
	case d.queue <- envelope{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		d.drop(event, "queue full")
	}
}

func (d *Dispatcher) drop(event domain.LedgerEvent, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("Dropping ledger event",
		slog.String("reason", reason),
		slog.String("type", string(event.Type)),
		slog.String("reference_id", event.ReferenceID))
}

// Dropped returns how many events were discarded so far.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for env := range d.queue {
		for _, sink := range d.sinks {
			d.deliver(env, sink)
		}
	}
}

func (d *Dispatcher) deliver(env envelope, sink portssvc.NotificationSink) {
	ctx, cancel := context.WithTimeout(env.ctx, d.timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Notification sink panicked", slog.String("sink", sink.Name()), slog.Any("panic", p))
		}
	}()
	if err := sink.Deliver(ctx, env.event); err != nil {
		d.logger.Warn("Notification delivery failed",
			slog.String("sink", sink.Name()),
			slog.String("type", string(env.event.Type)),
			slog.String("reference_id", env.event.ReferenceID),
			slog.String("error", err.Error()))
	}
}

// Close stops accepting events and waits for queued ones to be delivered or
// for ctx to end, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func event(ref string) domain.LedgerEvent {
	return domain.LedgerEvent{
		Type:          domain.EventTransferCompleted,
		ReferenceID:   ref,
		UserID:        "user-1",
		AccountID:     "aaaaaaaa-1111",
		CounterpartID: "bbbbbbbb-2222",
		Amount:        decimal.RequireFromString("30"),
		Description:   "rent",
		OccurredAt:    time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
}

// recordingSink remembers what it was given and can be told to block or fail.
type recordingSink struct {
	mu      sync.Mutex
	got     []string
	err     error
	gate    chan struct{}
	started chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(ctx context.Context, e domain.LedgerEvent) error {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, e.ReferenceID)
	return s.err
}

func (s *recordingSink) refs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func TestDispatcherDeliversToEverySink(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("down")}
	d := NewDispatcher(8, 2, quietLogger(), a, b)

	for _, ref := range []string{"r1", "r2", "r3"} {
		d.Notify(context.Background(), event(ref))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, a.refs())
	assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, b.refs(), "a failing sink still sees every event")
	assert.Zero(t, d.Dropped())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	d := NewDispatcher(1, 1, quietLogger(), sink)

	d.Notify(context.Background(), event("busy"))
	<-sink.started // the worker holds "busy"; the queue is empty again
	d.Notify(context.Background(), event("queued"))
	d.Notify(context.Background(), event("dropped"))
	assert.Equal(t, int64(1), d.Dropped())

	close(sink.gate)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"busy", "queued"}, sink.refs())
}

func TestNotifyAfterCloseIsDropped(t *testing.T) {
	d := NewDispatcher(4, 1, quietLogger())
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() { d.Notify(context.Background(), event("late")) })
	assert.Equal(t, int64(1), d.Dropped())
}

func TestCancelledRequestStillDelivers(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(4, 1, quietLogger(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx, event("after-response"))
	cancel()
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"after-response"}, sink.refs())
}

type panickySink struct{}

func (panickySink) Name() string { return "panicky" }
func (panickySink) Deliver(context.Context, domain.LedgerEvent) error {
	panic("boom")
}

func TestSinkPanicDoesNotKillWorker(t *testing.T) {
	after := &recordingSink{}
	d := NewDispatcher(4, 1, quietLogger(), panickySink{}, after)
	d.Notify(context.Background(), event("e1"))
	d.Notify(context.Background(), event("e2"))
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"e1", "e2"}, after.refs())
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func TestRabbitMQSinkPublishesJSON(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishWithContext", "ewallet.ledger", "ledger.events.transfer.completed", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got domain.LedgerEvent
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			msg.MessageId == "ref-9" &&
			got.Amount.Equal(decimal.NewFromInt(30))
	})).Return(nil).Once()

	sink := &RabbitMQSink{ch: pub, exchange: "ewallet.ledger", routingKey: "ledger.events"}
	require.NoError(t, sink.Deliver(context.Background(), event("ref-9")))
	pub.AssertExpectations(t)
	assert.NoError(t, sink.Close())
}

type mockDiscord struct{ mock.Mock }

func (m *mockDiscord) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	return nil, args.Error(1)
}

func TestDiscordSinkSendsSummary(t *testing.T) {
	dc := &mockDiscord{}
	dc.On("ChannelMessageSend", "chan-1", "Transfer of 30.00 from aaaaaaaa to bbbbbbbb (rent) at 2024-03-05 10:00:00 UTC").
		Return(nil, nil).Once()

	sink := &DiscordSink{session: dc, channelID: "chan-1"}
	require.NoError(t, sink.Deliver(context.Background(), event("r")))
	dc.AssertExpectations(t)
}

type mockTelegram struct{ mock.Mock }

func (m *mockTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(1)
}

func TestTelegramSink(t *testing.T) {
	tg := &mockTelegram{}
	tg.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && msg.Text != ""
	})).Return(tgbotapi.Message{}, errors.New("rate limited")).Once()

	sink := &TelegramSink{bot: tg, chatID: 42}
	assert.EqualError(t, sink.Deliver(context.Background(), event("r")), "rate limited")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Deliver(ctx, event("r")), context.Canceled)
	tg.AssertExpectations(t)
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) Enqueue(distinctID string, event string, properties map[string]any) error {
	return m.Called(distinctID, event, properties).Error(0)
}

func TestPosthogSink(t *testing.T) {
	ph := &mockEnqueuer{}
	ph.On("Enqueue", "user-1", "ledger_transfer.completed", mock.MatchedBy(func(p map[string]any) bool {
		return p["amount"] == "30.00" && p["reference_id"] == "r7"
	})).Return(nil).Once()

	require.NoError(t, NewPosthogSink(ph).Deliver(context.Background(), event("r7")))
	ph.AssertExpectations(t)
}

func TestSummaryShapes(t *testing.T) {
	e := event("r")
	e.Type = domain.EventCardFunded
	e.Description = ""
	assert.Equal(t, "Card bbbbbbbb funded with 30.00 from aaaaaaaa at 2024-03-05 10:00:00 UTC", summary(e))

	e.Type = domain.EventUserCreated
	e.UserID = "short"
	assert.Contains(t, summary(e), "New user short")
}

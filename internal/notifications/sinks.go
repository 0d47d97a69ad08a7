package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	_ portssvc.NotificationSink = (*LogSink)(nil)
	_ portssvc.NotificationSink = (*RabbitMQSink)(nil)
	_ portssvc.NotificationSink = (*DiscordSink)(nil)
	_ portssvc.NotificationSink = (*TelegramSink)(nil)
	_ portssvc.NotificationSink = (*PosthogSink)(nil)
)

// LogSink writes every event to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, e domain.LedgerEvent) error {
	s.logger.InfoContext(ctx, "Ledger event",
		slog.String("type", string(e.Type)),
		slog.String("reference_id", e.ReferenceID),
		slog.String("user_id", e.UserID),
		slog.String("account_id", e.AccountID),
		slog.String("amount", e.Amount.StringFixed(2)))
	return nil
}

// amqpPublisher is the part of *amqp.Channel the sink uses.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQSink publishes events as JSON to a topic exchange. The routing key
// is the configured prefix followed by the event type.
type RabbitMQSink struct {
	conn       *amqp.Connection
	ch         amqpPublisher
	exchange   string
	routingKey string
}

// NewRabbitMQSink dials url and declares a durable topic exchange.
func NewRabbitMQSink(url, exchange, routingKey string) (*RabbitMQSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitMQSink{conn: conn, ch: ch, exchange: exchange, routingKey: routingKey}, nil
}

func (s *RabbitMQSink) Name() string { return "rabbitmq" }

func (s *RabbitMQSink) Deliver(ctx context.Context, e domain.LedgerEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return s.ch.PublishWithContext(ctx,
		s.exchange,                      // exchange
		s.routingKey+"."+string(e.Type), // routing key
		false,                           // mandatory
		false,                           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ReferenceID,
			Type:         string(e.Type),
			Timestamp:    e.OccurredAt,
		},
	)
}

// Close closes the connection and with it the channel.
func (s *RabbitMQSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// discordMessenger is the part of *discordgo.Session the sink uses.
type discordMessenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSink posts a summary line to an ops channel over Discord's REST API.
// No gateway connection is opened.
type DiscordSink struct {
	session   discordMessenger
	channelID string
}

func NewDiscordSink(botToken, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &DiscordSink{session: session, channelID: channelID}, nil
}

func (s *DiscordSink) Name() string { return "discord" }

func (s *DiscordSink) Deliver(ctx context.Context, e domain.LedgerEvent) error {
	_, err := s.session.ChannelMessageSend(s.channelID, summary(e), discordgo.WithContext(ctx))
	return err
}

// telegramSender is the part of *tgbotapi.BotAPI the sink uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink sends a summary line to one chat.
type TelegramSink struct {
	bot    telegramSender
	chatID int64
}

func NewTelegramSink(botToken string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return &TelegramSink{bot: bot, chatID: chatID}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, e domain.LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, summary(e)))
	return err
}

// eventEnqueuer is satisfied by *utils.PosthogClientWrapper.
type eventEnqueuer interface {
	Enqueue(distinctID string, event string, properties map[string]any) error
}

// PosthogSink records events as product analytics captures keyed by user.
type PosthogSink struct {
	client eventEnqueuer
}

func NewPosthogSink(client eventEnqueuer) *PosthogSink {
	return &PosthogSink{client: client}
}

func (s *PosthogSink) Name() string { return "posthog" }

func (s *PosthogSink) Deliver(_ context.Context, e domain.LedgerEvent) error {
	return s.client.Enqueue(e.UserID, "ledger_"+string(e.Type), map[string]any{
		"reference_id": e.ReferenceID,
		"amount":       e.Amount.StringFixed(2),
		"occurred_at":  e.OccurredAt.Format(time.RFC3339),
	})
}

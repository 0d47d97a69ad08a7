package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers selectable through STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	StoreDriver string
	SQLitePath  string

	// Ledger behaviour
	TxIsolation string
	Timezone    *time.Location
	WeekStart   time.Weekday

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	RateLimit          string
	CORSAllowedOrigins []string
	PosthogAPIKey      string
	PosthogEndpoint    string

	// Notification dispatch
	NotifyQueueSize int
	NotifyWorkers   int

	RabbitMQURL        string
	RabbitMQExchange   string
	RabbitMQRoutingKey string
	DiscordBotToken    string
	DiscordChannelID   string
	TelegramBotToken   string
	TelegramChatID     int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("SQLITE_PATH", "ewallet.db")
	v.SetDefault("LEDGER_TX_ISOLATION", "serializable")
	v.SetDefault("LEDGER_TIMEZONE", "UTC")
	v.SetDefault("LEDGER_WEEK_START", "monday")
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "ewallet-ledger")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "ewallet.ledger")
	v.SetDefault("RABBITMQ_ROUTING_KEY", "ledger.events")
	v.SetDefault("DISCORD_BOT_TOKEN", "")
	v.SetDefault("DISCORD_CHANNEL_ID", "")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", 0)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		StoreDriver:        strings.ToLower(v.GetString("STORE_DRIVER")),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		TxIsolation:        strings.ToLower(v.GetString("LEDGER_TX_ISOLATION")),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		PosthogAPIKey:      v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:    v.GetString("POSTHOG_ENDPOINT"),
		NotifyQueueSize:    v.GetInt("NOTIFY_QUEUE_SIZE"),
		NotifyWorkers:      v.GetInt("NOTIFY_WORKERS"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:   v.GetString("RABBITMQ_EXCHANGE"),
		RabbitMQRoutingKey: v.GetString("RABBITMQ_ROUTING_KEY"),
		DiscordBotToken:    v.GetString("DISCORD_BOT_TOKEN"),
		DiscordChannelID:   v.GetString("DISCORD_CHANNEL_ID"),
		TelegramBotToken:   v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:     v.GetInt64("TELEGRAM_CHAT_ID"),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.TxIsolation {
	case "serializable", "repeatable read", "read committed":
	default:
		return nil, fmt.Errorf("unsupported LEDGER_TX_ISOLATION %q", cfg.TxIsolation)
	}

	loc, err := time.LoadLocation(v.GetString("LEDGER_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	weekStart, err := domain.ParseWeekday(v.GetString("LEDGER_WEEK_START"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_WEEK_START: %w", err)
	}
	cfg.WeekStart = weekStart

	// Load JWT Expiry Duration (e.g., "60m", "1h")
	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	cfg.JWTExpiryDuration, err = time.ParseDuration(jwtExpiryStr)
	if err != nil || cfg.JWTExpiryDuration <= 0 {
		cfg.JWTExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, cfg.JWTExpiryDuration)
	}

	if cfg.IsProduction && cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = 256
	}
	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = 1
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

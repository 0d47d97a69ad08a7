package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{"STORE_DRIVER": "memory"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "serializable", cfg.TxIsolation)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, time.Monday, cfg.WeekStart)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 256, cfg.NotifyQueueSize)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"STORE_DRIVER":         "sqlite",
		"LEDGER_WEEK_START":    "Sunday",
		"LEDGER_TIMEZONE":      "Asia/Kolkata",
		"LEDGER_TX_ISOLATION":  "Repeatable Read",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"JWT_EXPIRY_DURATION":  "15m",
		"TELEGRAM_CHAT_ID":     "-100123",
	}))
	require.NoError(t, err)

	assert.Equal(t, time.Sunday, cfg.WeekStart)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone.String())
	assert.Equal(t, "repeatable read", cfg.TxIsolation)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiryDuration)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
}

func TestFromViper_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{name: "postgres without url", overrides: map[string]any{"STORE_DRIVER": "postgres"}},
		{name: "unknown driver", overrides: map[string]any{"STORE_DRIVER": "mongo"}},
		{name: "bad isolation", overrides: map[string]any{"STORE_DRIVER": "memory", "LEDGER_TX_ISOLATION": "chaos"}},
		{name: "bad timezone", overrides: map[string]any{"STORE_DRIVER": "memory", "LEDGER_TIMEZONE": "Mars/Olympus"}},
		{name: "bad week start", overrides: map[string]any{"STORE_DRIVER": "memory", "LEDGER_WEEK_START": "someday"}},
		{name: "default secret in production", overrides: map[string]any{"STORE_DRIVER": "memory", "IS_PRODUCTION": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newTestViper(tt.overrides))
			assert.Error(t, err)
		})
	}
}

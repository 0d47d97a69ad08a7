package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/ewallet_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/core/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/SscSPs/ewallet_ledger/internal/handlers"
	"github.com/SscSPs/ewallet_ledger/internal/middleware"
	"github.com/SscSPs/ewallet_ledger/internal/notifications"
	"github.com/SscSPs/ewallet_ledger/internal/platform/config"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/ewallet_ledger/internal/repositories/memory"
	"github.com/SscSPs/ewallet_ledger/internal/utils"
	"github.com/SscSPs/ewallet_ledger/pkg/database"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title eWallet Ledger API
// @version 1.0
// @description Custodial wallet: accounts, transfers, cards and spending reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dto.RegisterValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	sinks, closeSinks := buildSinks(cfg, logger, posthogClient)
	defer closeSinks()
	dispatcher := notifications.NewDispatcher(cfg.NotifyQueueSize, cfg.NotifyWorkers, logger, sinks...)

	container := services.NewServiceContainer(cfg, repos, services.WithNotifier(dispatcher))

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors, analytics)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.PosthogMiddleware(posthogClient),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	// Committed events still queued are delivered before the sinks close.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("Notification queue not drained", slog.String("error", err.Error()),
			slog.Int64("dropped", dispatcher.Dropped()))
	}
}

// openStore builds the repository provider for the configured driver.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite store opened", slog.String("path", cfg.SQLitePath))
		return portsrepo.ProviderFromStore(store), func() {
			if err := store.Close(); err != nil {
				logger.Error("Error closing SQLite store", slog.String("error", err.Error()))
			}
		}, nil

	case config.StoreDriverMemory:
		logger.Warn("Using the in-memory store; nothing survives a restart")
		return portsrepo.ProviderFromStore(memory.New()), func() {}, nil

	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Database connection pool established.")

		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, database.DefaultMigrationsPath); err != nil {
			database.ClosePgxPool(dbPool)
			return portsrepo.RepositoryProvider{}, nil, err
		}

		return pgsql.NewRepositoryProvider(dbPool, pgsql.WithIsolation(cfg.TxIsolation)), func() {
			database.ClosePgxPool(dbPool)
		}, nil
	}
}

// buildSinks returns the log sink plus every remote sink that is configured.
// A sink that fails to start is skipped; ledger writes never depend on it.
func buildSinks(cfg *config.Config, logger *slog.Logger, posthogClient *utils.PosthogClientWrapper) ([]portssvc.NotificationSink, func()) {
	sinks := []portssvc.NotificationSink{notifications.NewLogSink(logger)}
	closers := []func() error{}

	if cfg.RabbitMQURL != "" {
		rabbit, err := notifications.NewRabbitMQSink(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		if err != nil {
			logger.Error("RabbitMQ sink disabled", slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, rabbit)
			closers = append(closers, rabbit.Close)
		}
	}
	if cfg.DiscordBotToken != "" && cfg.DiscordChannelID != "" {
		discord, err := notifications.NewDiscordSink(cfg.DiscordBotToken, cfg.DiscordChannelID)
		if err != nil {
			logger.Error("Discord sink disabled", slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, discord)
		}
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := notifications.NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Telegram sink disabled", slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, telegram)
		}
	}
	if posthogClient.IsInitialized() {
		sinks = append(sinks, notifications.NewPosthogSink(posthogClient))
	}

	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	logger.Info("Notification sinks ready", slog.Any("sinks", names))

	return sinks, func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("Error closing notification sink", slog.String("error", err.Error()))
			}
		}
	}
}

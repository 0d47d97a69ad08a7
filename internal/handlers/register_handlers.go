package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ewallet_ledger/cmd/docs"
	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/middleware"
	"github.com/SscSPs/ewallet_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	loginRate    = "5-M"
	fallbackRate = "60-M"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// Public routes
	registerAuthRoutes(api, services.User, services.TokenService)
	registerSignupRoutes(api, services.User)

	// Everything else requires a bearer token
	authed := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	moneyLimit := middleware.RateLimit(newLimiter(cfg.RateLimit))

	registerUserRoutes(authed, services.User)
	registerAccountRoutes(authed, services.Account)
	registerLedgerRoutes(authed, services.Ledger, moneyLimit)
	registerCardRoutes(authed, services.Card, moneyLimit)
	registerReportingRoutes(authed, services.Reporting)

	setupSwaggerRoutes(r, cfg)
}

// newLimiter builds an in-process limiter from a "<limit>-<period>" rate.
func newLimiter(formatted string) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		slog.Warn("Invalid rate limit, using fallback",
			slog.String("rate", formatted), slog.String("fallback", fallbackRate), slog.String("error", err.Error()))
		rate, _ = limiter.NewRateFromFormatted(fallbackRate)
	}
	return limiter.New(memory.NewStore(), rate)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

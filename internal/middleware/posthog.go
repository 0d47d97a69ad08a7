package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ewallet_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains path prefixes that should not be tracked by PostHog
var pathsToSkip = []string{"/health", "/swagger"}

func skipTracking(path string) bool {
	for _, p := range pathsToSkip {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// PosthogMiddleware creates a Gin middleware handler that tracks successful
// authenticated API calls with PostHog.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || skipTracking(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/transfers" -> "api_v1_transfers"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		if err := posthogClient.Enqueue(userID, eventName, props); err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("Failed to enqueue posthog event",
				slog.String("event", eventName), slog.String("error", err.Error()))
		}
	}
}

package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/homecare/visit-api/internal/handler"
)

// Logger writes one access line per request. It logs the route template
// rather than the raw URL so ids and search terms (patient names) stay out
// of the logs. Probe and scrape traffic is logged at debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		level := zerolog.InfoLevel
		switch {
		case status >= 500:
			level = zerolog.ErrorLevel
		case status >= 400:
			level = zerolog.WarnLevel
		case route == "/metrics" || strings.HasPrefix(route, "/health"):
			level = zerolog.DebugLevel
		}

		ev := log.WithLevel(level).
			Str("request_id", c.GetString(handler.RequestIDKey)).
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if user := handler.CurrentUser(c); user != nil {
			ev = ev.Str("user_id", user.ID.String()).Str("role", string(user.Role))
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Msg("request")
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homecare/visit-api/internal/handler"
)

const DefaultRequestTimeout = 30 * time.Second

// Timeout puts a deadline on the request context. Multipart uploads get
// four times the budget. A handler that returns after the deadline
// without writing gets a 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		d = DefaultRequestTimeout
	}
	return func(c *gin.Context) {
		budget := d
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			budget *= 4
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), budget)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			handler.Abort(c, http.StatusGatewayTimeout, "request timeout")
		}
	}
}

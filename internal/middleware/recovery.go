package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/homecare/visit-api/internal/handler"
)

// Recovery turns a handler panic into the 500 envelope. When the handler
// already started the response only the log entry is written.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			user := "-"
			if u := handler.CurrentUser(c); u != nil {
				user = u.ID.String()
			}
			log.Error().
				Err(fmt.Errorf("panic: %v", rec)).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Str("user_id", user).
				Str("request_id", c.GetString(handler.RequestIDKey)).
				Msg("request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			handler.Abort(c, http.StatusInternalServerError, "internal server error")
		}()
		c.Next()
	}
}

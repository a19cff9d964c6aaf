package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/homecare/visit-api/internal/handler"
)

type SizeLimitConfig struct {
	MaxBodySize int64
	// MaxUploadSize applies to multipart bodies (attachments, photos).
	MaxUploadSize int64
	MaxHeaderSize int
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20,
		MaxUploadSize: 50 << 20,
		MaxHeaderSize: 16 << 10,
	}
}

func headerBytes(h http.Header) int {
	n := 0
	for k, vs := range h {
		for _, v := range vs {
			n += len(k) + len(v) + 4 // ": " and CRLF
		}
	}
	return n
}

// SizeLimit answers 413 or 431 before the handler runs when the request
// declares too much, and caps the body reader for chunked requests.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max := config.MaxHeaderSize; max > 0 && headerBytes(c.Request.Header) > max {
			handler.Abort(c, http.StatusRequestHeaderFieldsTooLarge,
				"request headers exceed "+strconv.Itoa(max)+" bytes")
			return
		}

		max := config.MaxBodySize
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			max = config.MaxUploadSize
		}
		if max <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > max {
			handler.Abort(c, http.StatusRequestEntityTooLarge,
				"request body exceeds "+strconv.FormatInt(max, 10)+" bytes")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

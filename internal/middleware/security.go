package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type SecurityConfig struct {
	// HSTSMaxAge in seconds; zero omits Strict-Transport-Security for
	// plain-HTTP deployments behind the clinic VPN.
	HSTSMaxAge int
	// NoStore marks API responses uncacheable; they carry patient data.
	NoStore bool
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{HSTSMaxAge: 365 * 24 * 3600, NoStore: true}
}

// SecurityHeaders sets a fixed header set on every response. The API only
// serves JSON and uploaded files, so framing and scripts are refused.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	headers := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
		{"Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'"},
		{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	}
	if config.HSTSMaxAge > 0 {
		headers = append(headers, [2]string{"Strict-Transport-Security",
			"max-age=" + strconv.Itoa(config.HSTSMaxAge) + "; includeSubDomains"})
	}
	if config.NoStore {
		headers = append(headers, [2]string{"Cache-Control", "no-store"})
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}

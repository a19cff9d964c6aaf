package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
)

// Authenticator resolves a bearer access token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate verifies the bearer token and stores the user in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.Abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			handler.Abort(c, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			handler.Error(c, err)
			return
		}

		handler.SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireRoles admits only users whose role is in roles. It must run
// after Authenticate.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return RequireRoles(roles...)
}

func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		user := handler.CurrentUser(c)
		if user == nil {
			handler.Abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !allowed[user.Role] {
			handler.Abort(c, http.StatusForbidden, "permission denied")
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) Guards() handler.Guards {
	return handler.Guards{
		Authenticate: m.Authenticate(),
		RequireRoles: m.RequireRoles,
	}
}

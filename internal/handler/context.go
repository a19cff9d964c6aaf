package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
)

// Keys shared by middleware and handlers.
const (
	UserKey      = "current_user"
	RequestIDKey = "request_id"
)

func SetCurrentUser(c *gin.Context, user *model.User) {
	c.Set(UserKey, user)
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *gin.Context) *model.User {
	user, _ := c.Get(UserKey)
	u, _ := user.(*model.User)
	return u
}

// Scope is the caseload filter of the caller: the recorder's own id,
// or nil for admins and doctors who see every family.
func Scope(c *gin.Context) *uuid.UUID {
	u := CurrentUser(c)
	if u == nil || u.Role != model.RoleRecorder {
		return nil
	}
	id := u.ID
	return &id
}

// Guards are the access middlewares a handler attaches to its routes.
type Guards struct {
	Authenticate gin.HandlerFunc
	RequireRoles func(roles ...model.Role) gin.HandlerFunc
}

// Staff admits recorders and admins.
func (g Guards) Staff() gin.HandlerFunc {
	return g.RequireRoles(model.RoleRecorder, model.RoleAdmin)
}

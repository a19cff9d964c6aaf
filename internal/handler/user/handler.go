package user

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/user"
	"github.com/homecare/visit-api/pkg/pagination"
)

type Service interface {
	List(ctx context.Context, page pagination.Params, q user.ListQuery) (*model.UserPage, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor uuid.UUID) (*model.User, error)
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

// RegisterRoutes adds the admin user endpoints. Account creation lives
// with the auth handler.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users", h.guards.Authenticate, h.guards.RequireRoles(model.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), pagination.FromContext(c), user.ListQuery{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, page)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, u)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	u, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, handler.CurrentUser(c).ID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, u)
}

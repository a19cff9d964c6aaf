package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
)

type Service interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/profile", h.guards.Authenticate, h.Profile)
	}

	r.POST("/users", h.guards.Authenticate, h.guards.RequireRoles(model.RoleAdmin), h.CreateUser)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(http.StatusOK, "login successful", resp))
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, resp)
}

func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, profile)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "user created", user)
}

package servicepackage

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
)

type Service interface {
	List(ctx context.Context) ([]*model.ServicePackage, error)
	SystemDefaults(ctx context.Context) ([]*model.ServicePackage, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ServicePackage, error)
	Create(ctx context.Context, req *model.ServicePackageRequest) (*model.ServicePackage, error)
	Update(ctx context.Context, id uuid.UUID, req *model.ServicePackageRequest) (*model.ServicePackage, error)
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := h.guards.RequireRoles(model.RoleAdmin)

	packages := r.Group("/service-packages", h.guards.Authenticate)
	{
		packages.GET("", h.ListPackages)
		packages.GET("/system-defaults", h.SystemDefaults)
		packages.GET("/:id", h.GetPackage)
		packages.POST("", admin, h.CreatePackage)
		packages.PUT("/:id", admin, h.UpdatePackage)
	}
}

func (h *Handler) ListPackages(c *gin.Context) {
	pkgs, err := h.svc.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, pkgs)
}

func (h *Handler) SystemDefaults(c *gin.Context) {
	pkgs, err := h.svc.SystemDefaults(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, pkgs)
}

func (h *Handler) GetPackage(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, pkg)
}

func (h *Handler) CreatePackage(c *gin.Context) {
	var req model.ServicePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	pkg, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "service package created", pkg)
}

func (h *Handler) UpdatePackage(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.ServicePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	pkg, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, pkg)
}

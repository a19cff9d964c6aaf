package family

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/pkg/pagination"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateFamilyRequest, recorderID *uuid.UUID) (*model.Family, error)
	List(ctx context.Context, recorderID *uuid.UUID, page pagination.Params, search string) (*model.FamilyPage, error)
	Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Family, error)
	Random(ctx context.Context, recorderID *uuid.UUID) (*model.Family, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateFamilyRequest, recorderID *uuid.UUID) (*model.Family, error)
	Delete(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) error
	AddMember(ctx context.Context, familyID uuid.UUID, in *model.MemberInput, recorderID *uuid.UUID) (*model.Patient, error)
	UpdateMember(ctx context.Context, familyID, memberID uuid.UUID, req *model.UpdateMemberRequest, recorderID *uuid.UUID) (*model.Patient, error)
	DeleteMember(ctx context.Context, familyID, memberID uuid.UUID, recorderID *uuid.UUID) error
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	families := r.Group("/families", h.guards.Authenticate, h.guards.Staff())
	{
		families.POST("", h.CreateFamily)
		families.GET("", h.ListFamilies)
		families.GET("/random", h.RandomFamily)
		families.GET("/:id", h.GetFamily)
		families.PUT("/:id", h.UpdateFamily)
		families.DELETE("/:id", h.DeleteFamily)

		families.POST("/:id/members", h.AddMember)
		families.PUT("/:id/members/:memberId", h.UpdateMember)
		families.DELETE("/:id/members/:memberId", h.DeleteMember)
	}
}

func (h *Handler) CreateFamily(c *gin.Context) {
	var req model.CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	family, err := h.svc.Create(c.Request.Context(), &req, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "family created", family)
}

func (h *Handler) ListFamilies(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), handler.Scope(c),
		pagination.FromContext(c), strings.TrimSpace(c.Query("search")))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, page)
}

func (h *Handler) RandomFamily(c *gin.Context) {
	family, err := h.svc.Random(c.Request.Context(), handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, family)
}

func (h *Handler) GetFamily(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	family, err := h.svc.Get(c.Request.Context(), id, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, family)
}

func (h *Handler) UpdateFamily(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	family, err := h.svc.Update(c.Request.Context(), id, &req, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, family)
}

func (h *Handler) DeleteFamily(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, handler.Scope(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Message(c, "family deleted")
}

func (h *Handler) AddMember(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var in model.MemberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handler.BindError(c, err)
		return
	}

	member, err := h.svc.AddMember(c.Request.Context(), id, &in, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "member added", member)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	memberID, ok := handler.ParamID(c, "memberId")
	if !ok {
		return
	}
	var req model.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	member, err := h.svc.UpdateMember(c.Request.Context(), id, memberID, &req, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, member)
}

func (h *Handler) DeleteMember(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	memberID, ok := handler.ParamID(c, "memberId")
	if !ok {
		return
	}

	if err := h.svc.DeleteMember(c.Request.Context(), id, memberID, handler.Scope(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Message(c, "member deleted")
}

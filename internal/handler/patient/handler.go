package patient

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
)

type Service interface {
	Patient(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.PatientDetail, error)
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients/:id", h.guards.Authenticate,
		h.guards.RequireRoles(model.RoleRecorder, model.RoleAdmin, model.RoleDoctor), h.GetPatient)
}

// GetPatient returns a member with their subscriptions.
func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Patient(c.Request.Context(), id, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, detail)
}

package appointment

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/appointment"
	"github.com/homecare/visit-api/pkg/pagination"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest, recorderID uuid.UUID, scope *uuid.UUID) (*model.AppointmentDetail, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, scope *uuid.UUID) (*model.AppointmentDetail, error)
	Complete(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.AppointmentView, error)
	Delete(ctx context.Context, id uuid.UUID, scope *uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.AppointmentDetail, error)
	Today(ctx context.Context, scope *uuid.UUID) ([]model.AppointmentWithPatient, error)
	List(ctx context.Context, scope *uuid.UUID, page pagination.Params, q appointment.ListQuery) (*model.AppointmentPage, error)
	ServiceTypes(ctx context.Context) ([]*model.ServiceType, error)
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments", h.guards.Authenticate, h.guards.Staff())
	{
		appointments.GET("/today", h.Today)
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.POST("/:id/complete", h.CompleteAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}

	r.GET("/service-types", h.guards.Authenticate, h.ServiceTypes)
}

func (h *Handler) Today(c *gin.Context) {
	appts, err := h.svc.Today(c.Request.Context(), handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, appts)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), handler.Scope(c), pagination.FromContext(c), appointment.ListQuery{
		Status:   c.Query("status"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, page)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	detail, err := h.svc.Create(c.Request.Context(), &req, handler.CurrentUser(c).ID, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "appointment created", detail)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), id, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, detail)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	detail, err := h.svc.Update(c.Request.Context(), id, &req, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, detail)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	view, err := h.svc.Complete(c.Request.Context(), id, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, view)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, handler.Scope(c)); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Message(c, "appointment deleted")
}

func (h *Handler) ServiceTypes(c *gin.Context) {
	types, err := h.svc.ServiceTypes(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, types)
}

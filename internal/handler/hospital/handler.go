package hospital

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
	ListHospitals(ctx context.Context, filter model.HospitalFilter) ([]*model.PartnerHospital, error)
	Departments(ctx context.Context, hospitalID uuid.UUID) ([]*model.HospitalDepartment, error)
	Doctors(ctx context.Context, hospitalID, departmentID uuid.UUID) ([]*model.HospitalDoctor, error)
	CreateAppointment(ctx context.Context, req *model.CreateHospitalAppointmentRequest, recorderID uuid.UUID, scope *uuid.UUID) (*model.HospitalAppointmentView, error)
	GetAppointment(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.HospitalAppointmentView, error)
	ListAppointments(ctx context.Context, scope *uuid.UUID, status string, page pagination.Params) (*model.HospitalAppointmentPage, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateHospitalAppointmentRequest, scope *uuid.UUID) (*model.HospitalAppointmentView, error)
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	hospitals := r.Group("/hospitals", h.guards.Authenticate)
	{
		hospitals.GET("", h.ListHospitals)
		hospitals.GET("/:id/departments", h.ListDepartments)
		hospitals.GET("/:id/departments/:deptId/doctors", h.ListDoctors)
	}

	appts := r.Group("/hospital-appointments", h.guards.Authenticate, h.guards.Staff())
	{
		appts.POST("", h.guards.RequireRoles(model.RoleRecorder), h.CreateAppointment)
		appts.GET("", h.ListAppointments)
		appts.GET("/:id", h.GetAppointment)
		appts.PUT("/:id", h.UpdateAppointment)
	}
}

func (h *Handler) ListHospitals(c *gin.Context) {
	hospitals, err := h.svc.ListHospitals(c.Request.Context(), model.HospitalFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Department: strings.TrimSpace(c.Query("department")),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, hospitals)
}

func (h *Handler) ListDepartments(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	departments, err := h.svc.Departments(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, departments)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	deptID, ok := handler.ParamID(c, "deptId")
	if !ok {
		return
	}

	doctors, err := h.svc.Doctors(c.Request.Context(), id, deptID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, doctors)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateHospitalAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	view, err := h.svc.CreateAppointment(c.Request.Context(), &req, handler.CurrentUser(c).ID, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "hospital appointment created", view)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	page, err := h.svc.ListAppointments(c.Request.Context(), handler.Scope(c), c.Query("status"), pagination.FromContext(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, page)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	view, err := h.svc.GetAppointment(c.Request.Context(), id, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, view)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateHospitalAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	view, err := h.svc.UpdateAppointment(c.Request.Context(), id, &req, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, view)
}

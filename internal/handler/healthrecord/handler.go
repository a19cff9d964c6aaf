package healthrecord

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/healthrecord"
	"github.com/homecare/visit-api/pkg/pagination"
)

type Service interface {
	Create(ctx context.Context, form *model.CreateHealthRecordForm, files healthrecord.Attachments, recorderID uuid.UUID, scope *uuid.UUID) (*model.HealthRecord, error)
	Get(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.HealthRecord, error)
	List(ctx context.Context, scope, patientID *uuid.UUID, page pagination.Params) (*model.HealthRecordPage, error)
	CreateOrder(ctx context.Context, req *model.CreateMedicalOrderRequest, userID uuid.UUID) (*model.MedicalOrder, error)
	PatientOrders(ctx context.Context, patientID uuid.UUID, scope *uuid.UUID) ([]*model.MedicalOrder, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*model.MedicalOrder, error)
}

type Handler struct {
	svc    Service
	guards handler.Guards
}

func NewHandler(svc Service, guards handler.Guards) *Handler {
	return &Handler{svc: svc, guards: guards}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/health-records", h.guards.Authenticate, h.guards.Staff())
	{
		records.POST("", h.guards.RequireRoles(model.RoleRecorder), h.CreateRecord)
		records.GET("", h.ListRecords)
		records.GET("/:id", h.GetRecord)
	}

	doctor := h.guards.RequireRoles(model.RoleDoctor)
	r.POST("/medical-orders", h.guards.Authenticate, doctor, h.CreateOrder)
	r.PUT("/medical-orders/:id/status", h.guards.Authenticate, doctor, h.UpdateOrderStatus)
	r.GET("/patients/:id/medical-orders", h.guards.Authenticate,
		h.guards.RequireRoles(model.RoleDoctor, model.RoleRecorder, model.RoleAdmin), h.PatientOrders)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var form model.CreateHealthRecordForm
	if err := c.ShouldBind(&form); err != nil {
		handler.BindError(c, err)
		return
	}

	files, closers, err := attachments(c)
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	if err != nil {
		handler.Abort(c, http.StatusBadRequest, "unreadable upload: "+err.Error())
		return
	}

	record, err := h.svc.Create(c.Request.Context(), &form, files, handler.CurrentUser(c).ID, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "health record created", gin.H{"record_id": record.ID})
}

// attachments opens the optional audio_file, photos and patient_signature
// parts. The caller closes every returned file.
func attachments(c *gin.Context) (healthrecord.Attachments, []io.Closer, error) {
	var (
		files   healthrecord.Attachments
		closers []io.Closer
	)
	form, err := c.MultipartForm()
	if err != nil {
		// url-encoded submissions carry no files
		return files, nil, nil
	}

	open := func(fh *multipart.FileHeader) (*healthrecord.Upload, error) {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		return &healthrecord.Upload{Filename: fh.Filename, Content: f}, nil
	}

	if fhs := form.File["audio_file"]; len(fhs) > 0 {
		if files.Audio, err = open(fhs[0]); err != nil {
			return files, closers, err
		}
	}
	for _, fh := range form.File["photos"] {
		u, err := open(fh)
		if err != nil {
			return files, closers, err
		}
		files.Photos = append(files.Photos, *u)
	}
	if fhs := form.File["patient_signature"]; len(fhs) > 0 {
		if files.Signature, err = open(fhs[0]); err != nil {
			return files, closers, err
		}
	}
	return files, closers, nil
}

func (h *Handler) ListRecords(c *gin.Context) {
	var patientID *uuid.UUID
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			handler.Abort(c, http.StatusBadRequest, "invalid patient_id")
			return
		}
		patientID = &id
	}

	page, err := h.svc.List(c.Request.Context(), handler.Scope(c), patientID, pagination.FromContext(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, page)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	record, err := h.svc.Get(c.Request.Context(), id, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, record)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateMedicalOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), &req, handler.CurrentUser(c).ID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Created(c, "medical order created", order)
}

func (h *Handler) PatientOrders(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	orders, err := h.svc.PatientOrders(c.Request.Context(), id, handler.Scope(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateMedicalOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	order, err := h.svc.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.OK(c, order)
}

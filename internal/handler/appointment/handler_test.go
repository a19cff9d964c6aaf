package appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/homecare/visit-api/internal/handler"
	"github.com/homecare/visit-api/internal/middleware"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/appointment"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/pagination"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, req *model.CreateAppointmentRequest, recorderID uuid.UUID, scope *uuid.UUID) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, req, recorderID, scope)
	d, _ := args.Get(0).(*model.AppointmentDetail)
	return d, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, scope *uuid.UUID) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, id, req, scope)
	d, _ := args.Get(0).(*model.AppointmentDetail)
	return d, args.Error(1)
}

func (m *mockService) Complete(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.AppointmentView, error) {
	args := m.Called(ctx, id, scope)
	v, _ := args.Get(0).(*model.AppointmentView)
	return v, args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id uuid.UUID, scope *uuid.UUID) error {
	return m.Called(ctx, id, scope).Error(0)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, id, scope)
	d, _ := args.Get(0).(*model.AppointmentDetail)
	return d, args.Error(1)
}

func (m *mockService) Today(ctx context.Context, scope *uuid.UUID) ([]model.AppointmentWithPatient, error) {
	args := m.Called(ctx, scope)
	v, _ := args.Get(0).([]model.AppointmentWithPatient)
	return v, args.Error(1)
}

func (m *mockService) List(ctx context.Context, scope *uuid.UUID, page pagination.Params, q appointment.ListQuery) (*model.AppointmentPage, error) {
	args := m.Called(ctx, scope, page, q)
	p, _ := args.Get(0).(*model.AppointmentPage)
	return p, args.Error(1)
}

func (m *mockService) ServiceTypes(ctx context.Context) ([]*model.ServiceType, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*model.ServiceType)
	return v, args.Error(1)
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidation(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func setup(svc Service, user *model.User) *gin.Engine {
	guards := handler.Guards{
		Authenticate: func(c *gin.Context) {
			handler.SetCurrentUser(c, user)
			c.Next()
		},
		RequireRoles: middleware.RequireRoles,
	}
	r := gin.New()
	NewHandler(svc, guards).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func serve(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, handler.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func recorder() *model.User {
	u := &model.User{Role: model.RoleRecorder}
	u.ID = uuid.New()
	return u
}

func TestCreateAppointment(t *testing.T) {
	svc := new(mockService)
	user := recorder()
	patientID := uuid.New()

	detail := &model.AppointmentDetail{}
	detail.ID = uuid.New()
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateAppointmentRequest) bool {
		return req.PatientID == patientID && req.StartTime == "09:30" && req.Payment != nil
	}), user.ID, &user.ID).Return(detail, nil)

	w, resp := serve(setup(svc, user), http.MethodPost, "/api/v1/appointments", `{
		"patient_id": "`+patientID.String()+`",
		"scheduled_date": "2026-10-20", "start_time": "09:30", "end_time": "10:30",
		"payment": {"amount": 200}
	}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "appointment created", resp.Message)
	svc.AssertExpectations(t)
}

func TestCreateAppointmentRejectsBadClock(t *testing.T) {
	svc := new(mockService)

	w, resp := serve(setup(svc, recorder()), http.MethodPost, "/api/v1/appointments", `{
		"patient_id": "`+uuid.NewString()+`", "scheduled_date": "2026/10/20", "start_time": "9am"
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Message, "scheduled_date")
	assert.Contains(t, resp.Message, "start_time")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListPassesFilters(t *testing.T) {
	svc := new(mockService)
	admin := &model.User{Role: model.RoleAdmin}
	admin.ID = uuid.New()

	svc.On("List", mock.Anything, (*uuid.UUID)(nil), pagination.New(2, 10),
		appointment.ListQuery{Status: "scheduled,confirmed", DateFrom: "2026-10-01"}).
		Return(&model.AppointmentPage{}, nil)

	w, _ := serve(setup(svc, admin), http.MethodGet,
		"/api/v1/appointments?page=2&limit=10&status=scheduled,confirmed&date_from=2026-10-01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCompleteNotFound(t *testing.T) {
	svc := new(mockService)
	user := recorder()
	id := uuid.New()
	svc.On("Complete", mock.Anything, id, &user.ID).Return(nil, apperrors.NewNotFound("appointment", nil))

	w, resp := serve(setup(svc, user), http.MethodPost, "/api/v1/appointments/"+id.String()+"/complete", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "appointment not found", resp.Message)
}

func TestServiceTypesOpenToDoctors(t *testing.T) {
	svc := new(mockService)
	doctor := &model.User{Role: model.RoleDoctor}
	doctor.ID = uuid.New()
	svc.On("ServiceTypes", mock.Anything).Return([]*model.ServiceType{{Name: "基础健康监测"}}, nil)

	w, _ := serve(setup(svc, doctor), http.MethodGet, "/api/v1/service-types", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

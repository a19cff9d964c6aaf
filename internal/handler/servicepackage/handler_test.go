package servicepackage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context) ([]*model.ServicePackage, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*model.ServicePackage)
	return v, args.Error(1)
}

func (m *mockService) SystemDefaults(ctx context.Context) ([]*model.ServicePackage, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*model.ServicePackage)
	return v, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (*model.ServicePackage, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.ServicePackage)
	return v, args.Error(1)
}

func (m *mockService) Create(ctx context.Context, req *model.ServicePackageRequest) (*model.ServicePackage, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*model.ServicePackage)
	return v, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id uuid.UUID, req *model.ServicePackageRequest) (*model.ServicePackage, error) {
	args := m.Called(ctx, id, req)
	v, _ := args.Get(0).(*model.ServicePackage)
	return v, args.Error(1)
}

func setup(svc Service, role model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	user := &model.User{Role: role}
	user.ID = uuid.New()

	r := gin.New()
	NewHandler(svc, handler.Guards{
		Authenticate: func(c *gin.Context) {
			handler.SetCurrentUser(c, user)
			c.Next()
		},
		RequireRoles: middleware.RequireRoles,
	}).RegisterRoutes(r.Group("/api/v1"))
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

func TestSystemDefaultsRouteBeforeID(t *testing.T) {
	svc := new(mockService)
	level := 1
	svc.On("SystemDefaults", mock.Anything).
		Return([]*model.ServicePackage{{Name: "基础守护", PackageLevel: &level, IsSystemDefault: true}}, nil)

	w, resp := serve(setup(svc, model.RoleRecorder), http.MethodGet, "/api/v1/service-packages/system-defaults", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data, 1)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

const packageBody = `{"name":"康养套餐","price":980,"duration_days":90,"service_frequency":12,"package_level":%s}`

func TestCreatePackageAdminOnly(t *testing.T) {
	svc := new(mockService)
	body := strings.Replace(packageBody, "%s", "3", 1)

	w, _ := serve(setup(svc, model.RoleRecorder), http.MethodPost, "/api/v1/service-packages", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.ServicePackageRequest) bool {
		return req.Name == "康养套餐" && req.PackageLevel != nil && *req.PackageLevel == 3
	})).Return(&model.ServicePackage{ID: uuid.New(), Name: "康养套餐"}, nil)

	w, resp := serve(setup(svc, model.RoleAdmin), http.MethodPost, "/api/v1/service-packages", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "service package created", resp.Message)
	svc.AssertExpectations(t)
}

func TestCreatePackageLevelOutOfRange(t *testing.T) {
	svc := new(mockService)
	body := strings.Replace(packageBody, "%s", "11", 1)

	w, resp := serve(setup(svc, model.RoleAdmin), http.MethodPost, "/api/v1/service-packages", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, resp.Data)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdatePackageLevelTaken(t *testing.T) {
	svc := new(mockService)
	id := uuid.New()
	svc.On("Update", mock.Anything, id, mock.Anything).
		Return(nil, apperrors.NewConflict("package level 3 is already used", nil))

	w, resp := serve(setup(svc, model.RoleAdmin), http.MethodPut, "/api/v1/service-packages/"+id.String(),
		strings.Replace(packageBody, "%s", "3", 1))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "package level 3 is already used", resp.Message)
}

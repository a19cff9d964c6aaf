package user

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
	"github.com/homecare/visit-api/internal/service/user"
	"github.com/homecare/visit-api/pkg/pagination"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context, page pagination.Params, q user.ListQuery) (*model.UserPage, error) {
	args := m.Called(ctx, page, q)
	p, _ := args.Get(0).(*model.UserPage)
	return p, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id, status, actor)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func setup(svc Service, current *model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, handler.Guards{
		Authenticate: func(c *gin.Context) {
			handler.SetCurrentUser(c, current)
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

func newUser(role model.Role) *model.User {
	u := &model.User{Role: role}
	u.ID = uuid.New()
	return u
}

func TestListUsersPassesQuery(t *testing.T) {
	svc := new(mockService)
	svc.On("List", mock.Anything, pagination.New(1, 5), user.ListQuery{Role: "recorder", Status: "active"}).
		Return(&model.UserPage{Total: 0, Users: []*model.User{}}, nil)

	w, _ := serve(setup(svc, newUser(model.RoleAdmin)), http.MethodGet, "/api/v1/users?limit=5&role=recorder&status=active", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUsersAdminOnly(t *testing.T) {
	w, _ := serve(setup(new(mockService), newUser(model.RoleRecorder)), http.MethodGet, "/api/v1/users", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	svc := new(mockService)
	admin := newUser(model.RoleAdmin)
	target := newUser(model.RoleRecorder)
	target.Status = model.UserStatusInactive

	svc.On("UpdateStatus", mock.Anything, target.ID, model.UserStatusInactive, admin.ID).Return(target, nil)

	w, resp := serve(setup(svc, admin), http.MethodPut, "/api/v1/users/"+target.ID.String()+"/status", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "inactive", resp.Data.(map[string]interface{})["status"])
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc := new(mockService)
	w, _ := serve(setup(svc, newUser(model.RoleAdmin)), http.MethodPut,
		"/api/v1/users/"+uuid.NewString()+"/status", `{"status":"deleted"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

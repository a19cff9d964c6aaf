package family

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
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/pagination"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, req *model.CreateFamilyRequest, recorderID *uuid.UUID) (*model.Family, error) {
	args := m.Called(ctx, req, recorderID)
	family, _ := args.Get(0).(*model.Family)
	return family, args.Error(1)
}

func (m *mockService) List(ctx context.Context, recorderID *uuid.UUID, page pagination.Params, search string) (*model.FamilyPage, error) {
	args := m.Called(ctx, recorderID, page, search)
	p, _ := args.Get(0).(*model.FamilyPage)
	return p, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Family, error) {
	args := m.Called(ctx, id, recorderID)
	family, _ := args.Get(0).(*model.Family)
	return family, args.Error(1)
}

func (m *mockService) Random(ctx context.Context, recorderID *uuid.UUID) (*model.Family, error) {
	args := m.Called(ctx, recorderID)
	family, _ := args.Get(0).(*model.Family)
	return family, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateFamilyRequest, recorderID *uuid.UUID) (*model.Family, error) {
	args := m.Called(ctx, id, req, recorderID)
	family, _ := args.Get(0).(*model.Family)
	return family, args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) error {
	return m.Called(ctx, id, recorderID).Error(0)
}

func (m *mockService) AddMember(ctx context.Context, familyID uuid.UUID, in *model.MemberInput, recorderID *uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, familyID, in, recorderID)
	p, _ := args.Get(0).(*model.Patient)
	return p, args.Error(1)
}

func (m *mockService) UpdateMember(ctx context.Context, familyID, memberID uuid.UUID, req *model.UpdateMemberRequest, recorderID *uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, familyID, memberID, req, recorderID)
	p, _ := args.Get(0).(*model.Patient)
	return p, args.Error(1)
}

func (m *mockService) DeleteMember(ctx context.Context, familyID, memberID uuid.UUID, recorderID *uuid.UUID) error {
	return m.Called(ctx, familyID, memberID, recorderID).Error(0)
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidation(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// asUser stands in for token authentication.
func asUser(user *model.User) handler.Guards {
	return handler.Guards{
		Authenticate: func(c *gin.Context) {
			handler.SetCurrentUser(c, user)
			c.Next()
		},
		RequireRoles: middleware.RequireRoles,
	}
}

func newRecorder() *model.User {
	u := &model.User{Role: model.RoleRecorder, Name: "王护士"}
	u.ID = uuid.New()
	return u
}

func setup(svc Service, user *model.User) *gin.Engine {
	r := gin.New()
	NewHandler(svc, asUser(user)).RegisterRoutes(r.Group("/api/v1"))
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

func TestCreateFamilyScopedToRecorder(t *testing.T) {
	svc := new(mockService)
	user := newRecorder()
	family := &model.Family{HouseholdHead: "张三"}
	family.ID = uuid.New()

	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateFamilyRequest) bool {
		return req.HouseholdHead == "张三" && len(req.Members) == 1
	}), &user.ID).Return(family, nil)

	w, resp := serve(setup(svc, user), http.MethodPost, "/api/v1/families", `{
		"householdHead": "张三", "address": "朝阳区", "phone": "13800000000",
		"members": [{"name": "李四", "age": 60, "gender": "女", "relationship": "spouse", "conditions": ["高血压"]}]
	}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "family created", resp.Message)
	assert.Equal(t, family.ID.String(), resp.Data.(map[string]interface{})["id"])
	svc.AssertExpectations(t)
}

func TestCreateFamilyValidation(t *testing.T) {
	svc := new(mockService)

	w, resp := serve(setup(svc, newRecorder()), http.MethodPost, "/api/v1/families", `{
		"address": "朝阳区", "phone": "13800000000",
		"members": [{"name": "李四", "age": 60, "gender": "unknown", "relationship": "spouse"}]
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Message, "householdHead")
	assert.Contains(t, resp.Message, "gender")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestMalformedBody(t *testing.T) {
	w, _ := serve(setup(new(mockService), newRecorder()), http.MethodPost, "/api/v1/families", `{"householdHead":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteLastMember(t *testing.T) {
	svc := new(mockService)
	user := newRecorder()
	familyID, memberID := uuid.New(), uuid.New()

	svc.On("DeleteMember", mock.Anything, familyID, memberID, &user.ID).
		Return(apperrors.NewBusinessRule("cannot delete the family's last member"))

	w, resp := serve(setup(svc, user), http.MethodDelete,
		"/api/v1/families/"+familyID.String()+"/members/"+memberID.String(), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot delete the family's last member", resp.Message)
}

func TestGetFamilyOutOfScope(t *testing.T) {
	svc := new(mockService)
	user := newRecorder()
	id := uuid.New()

	svc.On("Get", mock.Anything, id, &user.ID).Return(nil, apperrors.NewNotFound("family", nil))

	w, _ := serve(setup(svc, user), http.MethodGet, "/api/v1/families/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidID(t *testing.T) {
	w, _ := serve(setup(new(mockService), newRecorder()), http.MethodGet, "/api/v1/families/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminSeesAllFamilies(t *testing.T) {
	svc := new(mockService)
	admin := &model.User{Role: model.RoleAdmin}
	admin.ID = uuid.New()

	svc.On("List", mock.Anything, (*uuid.UUID)(nil), mock.Anything, "张").
		Return(&model.FamilyPage{Families: []*model.Family{}}, nil)

	w, _ := serve(setup(svc, admin), http.MethodGet, "/api/v1/families?search=%E5%BC%A0", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDoctorCannotManageFamilies(t *testing.T) {
	doctor := &model.User{Role: model.RoleDoctor}
	doctor.ID = uuid.New()

	w, _ := serve(setup(new(mockService), doctor), http.MethodGet, "/api/v1/families", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

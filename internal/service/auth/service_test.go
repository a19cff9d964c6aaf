package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/mocks"
	"github.com/homecare/visit-api/pkg/auth"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/security"
)

var loginTime = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	users  *mocks.UserRepository
	tokens *auth.TokenManager
	hasher security.PasswordHasher
}

func newFixture() *fixture {
	users := &mocks.UserRepository{}
	tokens := auth.NewTokenManager(auth.Config{Secret: "access-secret", RefreshSecret: "refresh-secret"})
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	svc := NewService(mocks.Transactor{}, users, tokens, hasher)
	svc.now = func() time.Time { return loginTime }
	return &fixture{svc: svc, users: users, tokens: tokens, hasher: hasher}
}

func (f *fixture) user(t *testing.T, role model.Role, status string) *model.User {
	hash, err := f.hasher.Hash("secret123")
	require.NoError(t, err)
	u := &model.User{Username: "li.na", Phone: "13800000001", PasswordHash: hash, Role: role, Name: "李娜", Status: status}
	u.Touch(loginTime)
	return u
}

func TestLoginMissingFields(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{Password: "secret123"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{Username: "li.na"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
	f.users.AssertNotCalled(t, "GetByLogin", mock.Anything, mock.Anything)
}

func TestLoginByPhone(t *testing.T) {
	f := newFixture()
	u := f.user(t, model.RoleRecorder, model.UserStatusActive)
	f.users.On("GetByLogin", mock.Anything, "13800000001").Return(u, nil)
	f.users.On("UpdateLastLogin", mock.Anything, u.ID, loginTime).Return(nil)

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{Phone: "13800000001", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, u, resp.User)
	require.NotNil(t, resp.User.LastLogin)
	assert.Equal(t, loginTime, *resp.User.LastLogin)

	claims, err := f.tokens.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "recorder", claims.Role)
	_, err = f.tokens.ValidateRefreshToken(resp.RefreshToken)
	assert.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture()
	u := f.user(t, model.RoleRecorder, model.UserStatusActive)
	f.users.On("GetByLogin", mock.Anything, "li.na").Return(u, nil)
	f.users.On("GetByLogin", mock.Anything, "ghost").Return(nil, apperrors.NewNotFound("user", nil))

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{Username: "li.na", Password: "wrong-pass"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{Username: "ghost", Password: "secret123"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	f.users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	f := newFixture()
	u := f.user(t, model.RoleDoctor, model.UserStatusSuspended)
	f.users.On("GetByLogin", mock.Anything, "li.na").Return(u, nil)

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{Username: "li.na", Password: "secret123"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestRefresh(t *testing.T) {
	f := newFixture()
	u := f.user(t, model.RoleAdmin, model.UserStatusActive)
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	refresh, err := f.tokens.GenerateRefreshToken(u.ID, string(u.Role))
	require.NoError(t, err)

	resp, err := f.svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	claims, err := f.tokens.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)

	access, err := f.tokens.GenerateAccessToken(u.ID, string(u.Role))
	require.NoError(t, err)
	_, err = f.svc.Refresh(context.Background(), access)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture()
	active := f.user(t, model.RoleRecorder, model.UserStatusActive)
	inactive := f.user(t, model.RoleRecorder, model.UserStatusInactive)
	f.users.On("GetByID", mock.Anything, active.ID).Return(active, nil)
	f.users.On("GetByID", mock.Anything, inactive.ID).Return(inactive, nil)

	token, _ := f.tokens.GenerateAccessToken(active.ID, "recorder")
	got, err := f.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	token, _ = f.tokens.GenerateAccessToken(inactive.ID, "recorder")
	_, err = f.svc.Authenticate(context.Background(), token)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))

	_, err = f.svc.Authenticate(context.Background(), "not-a-token")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestProfileToleratesMissingRecorderProfile(t *testing.T) {
	f := newFixture()
	u := f.user(t, model.RoleRecorder, model.UserStatusActive)
	f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("GetRecorderByUserID", mock.Anything, u.ID).Return(nil, apperrors.NewNotFound("recorder", nil))

	profile, err := f.svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, profile.User)
	assert.Nil(t, profile.Recorder)
}

func TestCreateRecorderUser(t *testing.T) {
	f := newFixture()
	req := &model.CreateUserRequest{Username: "wang", Phone: "13900000002", Name: "王芳", Role: model.RoleRecorder, Password: "secret123"}
	notFound := apperrors.NewNotFound("user", nil)
	f.users.On("GetByLogin", mock.Anything, "wang").Return(nil, notFound)
	f.users.On("GetByLogin", mock.Anything, "13900000002").Return(nil, notFound)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	var recorder *model.Recorder
	f.users.On("CreateRecorder", mock.Anything, mock.AnythingOfType("*model.Recorder")).
		Run(func(args mock.Arguments) { recorder = args.Get(1).(*model.Recorder) }).
		Return(nil)

	u, err := f.svc.CreateUser(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, model.UserStatusActive, u.Status)
	assert.NoError(t, f.hasher.Compare(u.PasswordHash, "secret123"))
	require.NotNil(t, recorder)
	assert.Equal(t, u.ID, recorder.UserID)
	assert.Len(t, recorder.EmployeeID, 9)
}

func TestCreateUserConflict(t *testing.T) {
	f := newFixture()
	existing := f.user(t, model.RoleAdmin, model.UserStatusActive)
	f.users.On("GetByLogin", mock.Anything, "li.na").Return(existing, nil)

	_, err := f.svc.CreateUser(context.Background(), &model.CreateUserRequest{
		Username: "li.na", Phone: "13700000000", Name: "李娜", Role: model.RoleAdmin, Password: "secret123",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUserShortPassword(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateUser(context.Background(), &model.CreateUserRequest{
		Username: "zhao", Phone: "13600000000", Name: "赵", Role: model.RoleDoctor, Password: "123",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

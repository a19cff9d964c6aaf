package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/mocks"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/pagination"
)

func newService() (*Service, *mocks.UserRepository, *mocks.Emitter, time.Time) {
	users, events := new(mocks.UserRepository), new(mocks.Emitter)
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	svc := NewService(mocks.Transactor{}, users, events)
	svc.now = func() time.Time { return now }
	return svc, users, events, now
}

func TestListBuildsFilter(t *testing.T) {
	svc, users, _, _ := newService()
	users.On("List", mock.Anything, model.UserFilter{
		Role: model.RoleDoctor, Search: "李", Limit: 10, Offset: 10,
	}).Return([]*model.User{{Name: "李医生"}}, 11, nil)

	page, err := svc.List(context.Background(), pagination.New(2, 10), ListQuery{Role: "doctor", Search: " 李 "})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Users, 1)
}

func TestListRejectsUnknownRole(t *testing.T) {
	svc, users, _, _ := newService()
	_, err := svc.List(context.Background(), pagination.New(1, 20), ListQuery{Role: "nurse"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	users.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUpdateStatusEmitsEvent(t *testing.T) {
	svc, users, events, now := newService()
	id, admin := uuid.New(), uuid.New()

	users.On("UpdateStatus", mock.Anything, id, model.UserStatusSuspended, now).Return(nil)
	users.On("GetByID", mock.Anything, id).Return(&model.User{Status: model.UserStatusSuspended}, nil)
	events.On("Emit", mock.Anything, model.EventUserStatusChanged, statusEvent{
		UserID: id, Status: model.UserStatusSuspended, ChangedBy: admin,
	}).Return(nil)

	user, err := svc.UpdateStatus(context.Background(), id, model.UserStatusSuspended, admin)
	require.NoError(t, err)
	assert.False(t, user.IsActive())
	events.AssertExpectations(t)
}

func TestUpdateOwnStatusRejected(t *testing.T) {
	svc, users, _, _ := newService()
	id := uuid.New()

	_, err := svc.UpdateStatus(context.Background(), id, model.UserStatusInactive, id)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
	users.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusMissingUser(t *testing.T) {
	svc, users, _, now := newService()
	id := uuid.New()
	users.On("UpdateStatus", mock.Anything, id, model.UserStatusActive, now).
		Return(apperrors.NewNotFound("user", nil))

	_, err := svc.UpdateStatus(context.Background(), id, model.UserStatusActive, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

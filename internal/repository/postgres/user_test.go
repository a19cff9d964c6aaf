package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecare/visit-api/internal/model"
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

func TestUserListFiltersByRole(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1 AND status = \$2`).
		WithArgs("recorder", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY created_at DESC, id LIMIT \$3 OFFSET \$4`).
		WithArgs("recorder", "active", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "phone", "email", "password_hash", "role", "name",
			"avatar", "status", "last_login", "created_at", "updated_at",
		}).AddRow(uuid.NewString(), "rec01", "13800000001", nil, "hash", "recorder", "王护士",
			nil, "active", nil, now, now))

	users, total, err := repo.List(context.Background(), model.UserFilter{
		Role: model.RoleRecorder, Status: model.UserStatusActive, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "rec01", users[0].Username)
	assert.Equal(t, model.RoleRecorder, users[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateStatusMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id, now := uuid.New(), time.Now()
	mock.ExpectExec(`UPDATE users SET status = \$1`).
		WithArgs("suspended", now, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, model.UserStatusSuspended, now)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

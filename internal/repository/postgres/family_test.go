package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecare/visit-api/internal/model"
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func familyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "household_head", "address", "phone",
		"emergency_contact", "emergency_phone", "created_at", "updated_at",
	})
}

func TestFamilyGetScopedToRecorder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFamilyRepository(db)

	id, recorderID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(`FROM families f WHERE f.id = \$1 AND EXISTS .*ss.recorder_id = \$2`).
		WithArgs(id, recorderID).
		WillReturnRows(familyRows().AddRow(id.String(), "张三", "幸福路1号", "13800000000", nil, nil, now, now))

	family, err := repo.Get(context.Background(), id, &recorderID)
	require.NoError(t, err)
	assert.Equal(t, id, family.ID)
	assert.Equal(t, "张三", family.HouseholdHead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFamilyRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`FROM families f WHERE f.id = \$1$`).
		WithArgs(id).
		WillReturnRows(familyRows())

	_, err := repo.Get(context.Background(), id, nil)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyListSearchEscapesWildcards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFamilyRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM families f WHERE \(f.household_head LIKE \$1`).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY f.created_at DESC, f.id LIMIT \$2 OFFSET \$3`).
		WithArgs(`%50\%%`, 20, 40).
		WillReturnRows(familyRows().AddRow(uuid.NewString(), "李四", "50%路", "139", nil, nil, time.Now(), time.Now()))

	families, total, err := repo.List(context.Background(), model.FamilyFilter{Search: "50%", Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, families, 1)
	assert.Equal(t, "李四", families[0].HouseholdHead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFamilyRepository(db)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM families WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTransactorCommitsAndJoins(t *testing.T) {
	db, mock := newMockDB(t)
	tx := NewTransactor(db)
	families := NewFamilyRepository(db)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE families SET updated_at`).
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		// nested call joins the outer transaction
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			return families.Touch(ctx, id, time.Now())
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactorRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tx := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		return apperrors.NewBusinessRule("nope")
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

const healthRecordColumns = `id, patient_id, recorder_id, appointment_id, visit_date,
	visit_time, location_lat, location_lng, location_address, vital_signs,
	symptoms, notes, audio_file, photos, patient_signature, created_at`

type healthRecordRepository struct {
	BaseRepository
}

func NewHealthRecordRepository(db *sqlx.DB) repository.HealthRecordRepository {
	return &healthRecordRepository{NewBaseRepository(db)}
}

func (r *healthRecordRepository) Create(ctx context.Context, record *model.HealthRecord) error {
	query := `
		INSERT INTO health_records (` + healthRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		record.ID,
		record.PatientID,
		record.RecorderID,
		record.AppointmentID,
		record.VisitDate,
		record.VisitTime,
		record.LocationLat,
		record.LocationLng,
		record.LocationAddress,
		record.VitalSigns,
		record.Symptoms,
		record.Notes,
		record.AudioFile,
		record.Photos,
		record.PatientSignature,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health record: %w", err)
	}
	return nil
}

func (r *healthRecordRepository) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.HealthRecord, error) {
	var a args
	query := `SELECT ` + healthRecordColumns + ` FROM health_records WHERE id = ` + a.add(id)
	if recorderID != nil {
		query += ` AND recorder_id = ` + a.add(*recorderID)
	}

	var record model.HealthRecord
	if err := sqlx.GetContext(ctx, r.conn(ctx), &record, query, a...); err != nil {
		return nil, notFound("health record", err)
	}
	return &record, nil
}

func (r *healthRecordRepository) List(ctx context.Context, filter model.HealthRecordFilter) ([]*model.HealthRecord, int, error) {
	var a args
	var where []string
	if filter.RecorderID != nil {
		where = append(where, "recorder_id = "+a.add(*filter.RecorderID))
	}
	if filter.PatientID != nil {
		where = append(where, "patient_id = "+a.add(*filter.PatientID))
	}

	from := ` FROM health_records`
	if len(where) > 0 {
		from += ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, `SELECT COUNT(*)`+from, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to count health records: %w", err)
	}

	query := `SELECT ` + healthRecordColumns + from +
		` ORDER BY visit_date DESC, visit_time DESC, id` +
		` LIMIT ` + a.add(filter.Limit) + ` OFFSET ` + a.add(filter.Offset)

	records := []*model.HealthRecord{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &records, query, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to list health records: %w", err)
	}
	return records, total, nil
}

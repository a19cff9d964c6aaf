package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

const appointmentColumns = `id, patient_id, recorder_id, service_type_id,
	scheduled_date, start_time, end_time, appointment_type, status, notes,
	created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.RecorderID,
		appointment.ServiceTypeID,
		appointment.ScheduledDate,
		appointment.StartTime,
		appointment.EndTime,
		appointment.AppointmentType,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Appointment, error) {
	var a args
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ` + a.add(id)
	if recorderID != nil {
		query += ` AND recorder_id = ` + a.add(*recorderID)
	}

	var appointment model.Appointment
	if err := sqlx.GetContext(ctx, r.conn(ctx), &appointment, query, a...); err != nil {
		return nil, notFound("appointment", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, service_type_id = $2, scheduled_date = $3,
			start_time = $4, end_time = $5, appointment_type = $6, status = $7,
			notes = $8, updated_at = $9
		WHERE id = $10
	`
	res, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.PatientID,
		appointment.ServiceTypeID,
		appointment.ScheduledDate,
		appointment.StartTime,
		appointment.EndTime,
		appointment.AppointmentType,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return expectRows(res, "appointment")
}

// Delete removes the appointment; payments cascade.
func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return expectRows(res, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, int, error) {
	var a args
	var where []string
	if filter.RecorderID != nil {
		where = append(where, "recorder_id = "+a.add(*filter.RecorderID))
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status = ANY("+a.add(pq.Array(filter.Statuses))+")")
	}
	if filter.DateFrom != nil {
		where = append(where, "scheduled_date >= "+a.add(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, "scheduled_date <= "+a.add(*filter.DateTo))
	}

	from := ` FROM appointments`
	if len(where) > 0 {
		from += ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, `SELECT COUNT(*)`+from, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := `SELECT ` + appointmentColumns + from +
		` ORDER BY scheduled_date DESC, start_time, id` +
		` LIMIT ` + a.add(filter.Limit) + ` OFFSET ` + a.add(filter.Offset)

	appointments := []*model.Appointment{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &appointments, query, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) ListForDay(ctx context.Context, recorderID *uuid.UUID, day model.Date, statuses []string) ([]*model.Appointment, error) {
	var a args
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE scheduled_date = ` + a.add(day)
	if recorderID != nil {
		query += ` AND recorder_id = ` + a.add(*recorderID)
	}
	if len(statuses) > 0 {
		query += ` AND status = ANY(` + a.add(pq.Array(statuses)) + `)`
	}
	query += ` ORDER BY start_time, id`

	appointments := []*model.Appointment{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &appointments, query, a...); err != nil {
		return nil, fmt.Errorf("failed to list appointments for day: %w", err)
	}
	return appointments, nil
}

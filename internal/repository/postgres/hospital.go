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

const hospitalAppointmentView = `
	SELECT ha.id, ha.patient_id, ha.recorder_id, ha.hospital_id, ha.department_id,
		ha.doctor_id, ha.appointment_date, ha.appointment_time, ha.status,
		ha.appointment_number, ha.fee, ha.notes, ha.result_notes,
		ha.created_at, ha.updated_at,
		p.name AS patient_name, h.name AS hospital_name,
		d.name AS department_name, doc.name AS doctor_name
	FROM hospital_appointments ha
	JOIN patients p ON p.id = ha.patient_id
	JOIN partner_hospitals h ON h.id = ha.hospital_id
	JOIN hospital_departments d ON d.id = ha.department_id
	LEFT JOIN hospital_doctors doc ON doc.id = ha.doctor_id`

type hospitalRepository struct {
	BaseRepository
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{NewBaseRepository(db)}
}

// ListHospitals returns partners in active cooperation. Department matches
// hospitals with an active department whose name contains it.
func (r *hospitalRepository) ListHospitals(ctx context.Context, filter model.HospitalFilter) ([]*model.PartnerHospital, error) {
	var a args
	where := []string{"h.cooperation_status = 'active'"}
	if filter.Search != "" {
		where = append(where, "h.name LIKE "+a.add(containsPattern(filter.Search)))
	}
	if filter.Department != "" {
		where = append(where, `EXISTS (SELECT 1 FROM hospital_departments d
			WHERE d.hospital_id = h.id AND d.is_active AND d.name LIKE `+a.add(containsPattern(filter.Department))+`)`)
	}

	query := `SELECT h.id, h.name, h.address, h.phone, h.level, h.cooperation_status, h.created_at
		FROM partner_hospitals h WHERE ` + strings.Join(where, " AND ") + ` ORDER BY h.name`

	hospitals := []*model.PartnerHospital{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &hospitals, query, a...); err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

func (r *hospitalRepository) GetHospital(ctx context.Context, id uuid.UUID) (*model.PartnerHospital, error) {
	var hospital model.PartnerHospital
	query := `SELECT id, name, address, phone, level, cooperation_status, created_at
		FROM partner_hospitals WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &hospital, query, id); err != nil {
		return nil, notFound("hospital", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.HospitalDepartment, error) {
	departments := []*model.HospitalDepartment{}
	query := `SELECT id, hospital_id, name, description, available_times, is_active
		FROM hospital_departments WHERE hospital_id = $1 AND is_active ORDER BY name`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &departments, query, hospitalID); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (r *hospitalRepository) GetDepartment(ctx context.Context, hospitalID, departmentID uuid.UUID) (*model.HospitalDepartment, error) {
	var department model.HospitalDepartment
	query := `SELECT id, hospital_id, name, description, available_times, is_active
		FROM hospital_departments WHERE id = $1 AND hospital_id = $2`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &department, query, departmentID, hospitalID); err != nil {
		return nil, notFound("department", err)
	}
	return &department, nil
}

func (r *hospitalRepository) ListDoctors(ctx context.Context, hospitalID, departmentID uuid.UUID) ([]*model.HospitalDoctor, error) {
	doctors := []*model.HospitalDoctor{}
	query := `SELECT id, hospital_id, department_id, name, title, specialty, schedule,
			consultation_fee, is_available
		FROM hospital_doctors
		WHERE hospital_id = $1 AND department_id = $2 AND is_available
		ORDER BY name`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &doctors, query, hospitalID, departmentID); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *hospitalRepository) GetDoctor(ctx context.Context, id uuid.UUID) (*model.HospitalDoctor, error) {
	var doctor model.HospitalDoctor
	query := `SELECT id, hospital_id, department_id, name, title, specialty, schedule,
			consultation_fee, is_available
		FROM hospital_doctors WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &doctor, query, id); err != nil {
		return nil, notFound("doctor", err)
	}
	return &doctor, nil
}

func (r *hospitalRepository) CreateAppointment(ctx context.Context, appt *model.HospitalAppointment) error {
	query := `
		INSERT INTO hospital_appointments (
			id, patient_id, recorder_id, hospital_id, department_id, doctor_id,
			appointment_date, appointment_time, status, appointment_number, fee,
			notes, result_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.RecorderID,
		appt.HospitalID,
		appt.DepartmentID,
		appt.DoctorID,
		appt.AppointmentDate,
		appt.AppointmentTime,
		appt.Status,
		appt.AppointmentNumber,
		appt.Fee,
		appt.Notes,
		appt.ResultNotes,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hospital appointment: %w", err)
	}
	return nil
}

func (r *hospitalRepository) GetAppointment(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.HospitalAppointmentView, error) {
	var a args
	query := hospitalAppointmentView + ` WHERE ha.id = ` + a.add(id)
	if recorderID != nil {
		query += ` AND ha.recorder_id = ` + a.add(*recorderID)
	}

	var view model.HospitalAppointmentView
	if err := sqlx.GetContext(ctx, r.conn(ctx), &view, query, a...); err != nil {
		return nil, notFound("hospital appointment", err)
	}
	return &view, nil
}

func (r *hospitalRepository) ListAppointments(ctx context.Context, filter model.HospitalAppointmentFilter) ([]*model.HospitalAppointmentView, int, error) {
	var a args
	var where []string
	if filter.RecorderID != nil {
		where = append(where, "ha.recorder_id = "+a.add(*filter.RecorderID))
	}
	if filter.Status != "" {
		where = append(where, "ha.status = "+a.add(filter.Status))
	}
	cond := ""
	if len(where) > 0 {
		cond = ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM hospital_appointments ha` + cond
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, countQuery, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to count hospital appointments: %w", err)
	}

	query := hospitalAppointmentView + cond +
		` ORDER BY ha.appointment_date DESC, ha.appointment_time DESC, ha.id` +
		` LIMIT ` + a.add(filter.Limit) + ` OFFSET ` + a.add(filter.Offset)

	views := []*model.HospitalAppointmentView{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &views, query, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to list hospital appointments: %w", err)
	}
	return views, total, nil
}

func (r *hospitalRepository) UpdateAppointment(ctx context.Context, appt *model.HospitalAppointment) error {
	query := `
		UPDATE hospital_appointments
		SET status = $1, appointment_number = $2, fee = $3, result_notes = $4, updated_at = $5
		WHERE id = $6
	`
	res, err := r.conn(ctx).ExecContext(ctx, query,
		appt.Status,
		appt.AppointmentNumber,
		appt.Fee,
		appt.ResultNotes,
		appt.UpdatedAt,
		appt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital appointment: %w", err)
	}
	return expectRows(res, "hospital appointment")
}

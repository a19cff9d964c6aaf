package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

const patientColumns = `p.id, p.family_id, p.name, p.age, p.gender, p.relationship,
	p.conditions, p.package_type, p.payment_status, p.last_service, p.phone,
	p.medications, p.is_active, p.created_at, p.updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, family_id, name, age, gender, relationship, conditions,
			package_type, payment_status, last_service, phone, medications,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		patient.ID,
		patient.FamilyID,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Relationship,
		patient.Conditions,
		patient.PackageType,
		patient.PaymentStatus,
		patient.LastService,
		patient.Phone,
		patient.Medications,
		patient.IsActive,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id, familyID uuid.UUID, recorderID *uuid.UUID) (*model.Patient, error) {
	var a args
	query := `SELECT ` + patientColumns + `
		FROM patients p JOIN families f ON f.id = p.family_id
		WHERE p.id = ` + a.add(id) + ` AND p.family_id = ` + a.add(familyID)
	if recorderID != nil {
		query += ` AND ` + fmt.Sprintf(familyScope, a.add(*recorderID))
	}

	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.conn(ctx), &patient, query, a...); err != nil {
		return nil, notFound("family member", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Patient, error) {
	var a args
	query := `SELECT ` + patientColumns + `
		FROM patients p JOIN families f ON f.id = p.family_id
		WHERE p.id = ` + a.add(id)
	if recorderID != nil {
		query += ` AND ` + fmt.Sprintf(familyScope, a.add(*recorderID))
	}

	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.conn(ctx), &patient, query, a...); err != nil {
		return nil, notFound("patient", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetHead(ctx context.Context, familyID uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients p
		WHERE p.family_id = $1 AND p.relationship = $2
		ORDER BY p.created_at LIMIT 1`

	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.conn(ctx), &patient, query, familyID, model.RelationshipHead); err != nil {
		return nil, notFound("household head", err)
	}
	return &patient, nil
}

// ListByFamilies returns members ordered head first, then by creation.
func (r *patientRepository) ListByFamilies(ctx context.Context, familyIDs []uuid.UUID) ([]*model.Patient, error) {
	patients := []*model.Patient{}
	if len(familyIDs) == 0 {
		return patients, nil
	}

	ids := make([]string, len(familyIDs))
	for i, id := range familyIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + patientColumns + ` FROM patients p
		WHERE p.family_id = ANY($1::uuid[])
		ORDER BY p.family_id, (p.relationship = $2) DESC, p.created_at, p.id`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &patients, query, pq.Array(ids), model.RelationshipHead); err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return patients, nil
}

type patientSummaryRow struct {
	ID            uuid.UUID `db:"id"`
	Name          string    `db:"name"`
	Age           int       `db:"age"`
	Gender        string    `db:"gender"`
	Phone         *string   `db:"phone"`
	FamilyID      uuid.UUID `db:"family_id"`
	HouseholdHead string    `db:"household_head"`
	Address       string    `db:"address"`
	FamilyPhone   string    `db:"family_phone"`
}

func (r *patientRepository) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.PatientSummary, error) {
	out := make(map[uuid.UUID]*model.PatientSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	query := `
		SELECT p.id, p.name, p.age, p.gender, p.phone, f.id AS family_id,
			f.household_head, f.address, f.phone AS family_phone
		FROM patients p JOIN families f ON f.id = p.family_id
		WHERE p.id = ANY($1::uuid[])
	`
	var rows []patientSummaryRow
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, pq.Array(strIDs)); err != nil {
		return nil, fmt.Errorf("failed to load patient summaries: %w", err)
	}

	for _, row := range rows {
		out[row.ID] = &model.PatientSummary{
			ID:     row.ID,
			Name:   row.Name,
			Age:    row.Age,
			Gender: row.Gender,
			Phone:  row.Phone,
			Family: &model.FamilySummary{
				ID:            row.FamilyID,
				HouseholdHead: row.HouseholdHead,
				Address:       row.Address,
				Phone:         row.FamilyPhone,
			},
		}
	}
	return out, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, age = $2, gender = $3, relationship = $4, conditions = $5,
			package_type = $6, payment_status = $7, last_service = $8, phone = $9,
			medications = $10, is_active = $11, updated_at = $12
		WHERE id = $13
	`
	res, err := r.conn(ctx).ExecContext(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Relationship,
		patient.Conditions,
		patient.PackageType,
		patient.PaymentStatus,
		patient.LastService,
		patient.Phone,
		patient.Medications,
		patient.IsActive,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return expectRows(res, "patient")
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return expectRows(res, "patient")
}

func (r *patientRepository) DeleteNonHead(ctx context.Context, familyID uuid.UUID) error {
	_, err := r.conn(ctx).ExecContext(ctx,
		`DELETE FROM patients WHERE family_id = $1 AND relationship <> $2`,
		familyID, model.RelationshipHead)
	if err != nil {
		return fmt.Errorf("failed to delete family members: %w", err)
	}
	return nil
}

// CountByFamily counts every member row, active or not.
func (r *patientRepository) CountByFamily(ctx context.Context, familyID uuid.UUID) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.conn(ctx), &n, `SELECT COUNT(*) FROM patients WHERE family_id = $1`, familyID); err != nil {
		return 0, fmt.Errorf("failed to count family members: %w", err)
	}
	return n, nil
}

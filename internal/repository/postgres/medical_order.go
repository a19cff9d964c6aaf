package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

const medicalOrderColumns = `id, patient_id, doctor_id, health_record_id, order_type,
	content, dosage, frequency, duration, notes, status, created_at`

type medicalOrderRepository struct {
	BaseRepository
}

func NewMedicalOrderRepository(db *sqlx.DB) repository.MedicalOrderRepository {
	return &medicalOrderRepository{NewBaseRepository(db)}
}

func (r *medicalOrderRepository) Create(ctx context.Context, order *model.MedicalOrder) error {
	query := `
		INSERT INTO medical_orders (` + medicalOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		order.ID,
		order.PatientID,
		order.DoctorID,
		order.HealthRecordID,
		order.OrderType,
		order.Content,
		order.Dosage,
		order.Frequency,
		order.Duration,
		order.Notes,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical order: %w", err)
	}
	return nil
}

func (r *medicalOrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalOrder, error) {
	var order model.MedicalOrder
	query := `SELECT ` + medicalOrderColumns + ` FROM medical_orders WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &order, query, id); err != nil {
		return nil, notFound("medical order", err)
	}
	return &order, nil
}

func (r *medicalOrderRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalOrder, error) {
	orders := []*model.MedicalOrder{}
	query := `SELECT ` + medicalOrderColumns + ` FROM medical_orders
		WHERE patient_id = $1 ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &orders, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical orders: %w", err)
	}
	return orders, nil
}

func (r *medicalOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.conn(ctx).ExecContext(ctx, `UPDATE medical_orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update medical order: %w", err)
	}
	return expectRows(res, "medical order")
}

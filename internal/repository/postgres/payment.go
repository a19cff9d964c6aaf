package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{NewBaseRepository(db)}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, appointment_id, patient_id, amount, payment_method, payment_status,
			transaction_id, payment_date, refund_amount, refund_date, refund_reason,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		payment.ID,
		payment.AppointmentID,
		payment.PatientID,
		payment.Amount,
		payment.PaymentMethod,
		payment.PaymentStatus,
		payment.TransactionID,
		payment.PaymentDate,
		payment.RefundAmount,
		payment.RefundDate,
		payment.RefundReason,
		payment.Notes,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	query := `
		UPDATE payments
		SET amount = $1, payment_method = $2, payment_status = $3,
			transaction_id = $4, payment_date = $5, refund_amount = $6,
			refund_date = $7, refund_reason = $8, notes = $9, updated_at = $10
		WHERE id = $11
	`
	res, err := r.conn(ctx).ExecContext(ctx, query,
		payment.Amount,
		payment.PaymentMethod,
		payment.PaymentStatus,
		payment.TransactionID,
		payment.PaymentDate,
		payment.RefundAmount,
		payment.RefundDate,
		payment.RefundReason,
		payment.Notes,
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return expectRows(res, "payment")
}

func (r *paymentRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, appointment_id, patient_id, amount, payment_method, payment_status,
			transaction_id, payment_date, refund_amount, refund_date, refund_reason,
			notes, created_at, updated_at
		FROM payments
		WHERE appointment_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var payment model.Payment
	if err := sqlx.GetContext(ctx, r.conn(ctx), &payment, query, appointmentID); err != nil {
		return nil, notFound("payment", err)
	}
	return &payment, nil
}

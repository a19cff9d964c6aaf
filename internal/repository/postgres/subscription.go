package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

type subscriptionRepository struct {
	BaseRepository
}

func NewSubscriptionRepository(db *sqlx.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{NewBaseRepository(db)}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.PatientSubscription) error {
	query := `
		INSERT INTO patient_subscriptions (
			id, patient_id, package_id, recorder_id, start_date, end_date,
			status, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		sub.ID,
		sub.PatientID,
		sub.PackageID,
		sub.RecorderID,
		sub.StartDate,
		sub.EndDate,
		sub.Status,
		sub.PaymentStatus,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientSubscription, error) {
	query := `
		SELECT id, patient_id, package_id, recorder_id, start_date, end_date,
			status, payment_status, created_at, updated_at
		FROM patient_subscriptions
		WHERE patient_id = $1
		ORDER BY start_date DESC, created_at DESC
	`
	subs := []*model.PatientSubscription{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &subs, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// ExpireEndedBefore moves active subscriptions whose end date is before
// day to expired. Expired rows still count toward caseload scoping.
func (r *subscriptionRepository) ExpireEndedBefore(ctx context.Context, day model.Date, now time.Time) (int64, error) {
	query := `
		UPDATE patient_subscriptions
		SET status = $1, updated_at = $2
		WHERE status = $3 AND end_date < $4
	`
	res, err := r.conn(ctx).ExecContext(ctx, query,
		model.SubscriptionStatusExpired, now, model.SubscriptionStatusActive, day)
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	return res.RowsAffected()
}

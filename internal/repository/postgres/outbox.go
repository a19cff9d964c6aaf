package postgres

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

const (
	outboxColumns = `id, event_type, payload, status, error_message, retry_count,
		created_at, processed_at, updated_at`
	// Delivery errors can embed whole SMTP or Redis responses.
	maxOutboxErrorLen = 1000
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}

// Create joins the caller's transaction when ctx carries one, so the event
// is only visible once the change it describes commits.
func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil || len(event.Payload) == 0 {
		return apperrors.NewInternal(errors.New("outbox event without payload"))
	}
	_, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.EventType, []byte(event.Payload), string(event.Status),
		event.RetryCount, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return apperrors.NewDatabase("failed to write outbox event", err)
	}
	return nil
}

// GetPendingEventsWithLock claims the oldest pending events. Concurrent
// workers skip each other's rows instead of waiting on them.
func (r *outboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	events := []*model.OutboxEvent{}
	err := sqlx.SelectContext(ctx, r.conn(ctx), &events, `
		SELECT `+outboxColumns+`
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		string(model.OutboxStatusPending), limit)
	if err != nil {
		return nil, apperrors.NewDatabase("failed to claim outbox events", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE outbox_events
		SET status = $1, error_message = NULL, processed_at = $2, updated_at = $2
		WHERE id = $3`,
		string(model.OutboxStatusProcessed), at, id)
	if err != nil {
		return apperrors.NewDatabase("failed to mark outbox event processed", err)
	}
	return expectRows(res, "outbox event")
}

// MarkRetry keeps the event pending for the next poll.
func (r *outboxRepository) MarkRetry(ctx context.Context, id uuid.UUID, message string, retries int) error {
	return r.recordFailure(ctx, id, model.OutboxStatusPending, message, retries)
}

// MarkFailed parks the event; it is not polled again.
func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string, retries int) error {
	return r.recordFailure(ctx, id, model.OutboxStatusFailed, message, retries)
}

func (r *outboxRepository) recordFailure(ctx context.Context, id uuid.UUID, status model.OutboxStatus, message string, retries int) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE outbox_events
		SET status = $1, error_message = $2, retry_count = $3, updated_at = NOW()
		WHERE id = $4`,
		string(status), truncateUTF8(message, maxOutboxErrorLen), retries, id)
	if err != nil {
		return apperrors.NewDatabase("failed to record outbox delivery error", err)
	}
	return expectRows(res, "outbox event")
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
)

// OutboxRepository is the slice of the outbox store the relay needs.
type OutboxRepository interface {
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkRetry(ctx context.Context, id uuid.UUID, message string, retries int) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string, retries int) error
}

// Transactor binds a transaction to ctx for the duration of fn.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Package event records domain events in the transactional outbox.
package event

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// EventService writes events to the outbox. Called with a transaction
// bound ctx, the event commits or rolls back with the caller's writes.
type EventService struct {
	outboxRepo repository.OutboxRepository
	now        func() time.Time
}

func NewEventService(outboxRepo repository.OutboxRepository) *EventService {
	return &EventService{outboxRepo: outboxRepo, now: time.Now}
}

// Emit rejects event types the worker has no route for and payloads that
// do not encode to a JSON object; both are programming errors.
func (s *EventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	if !model.KnownEvent(eventType) {
		return apperrors.NewInternal(fmt.Errorf("unknown event type %q", eventType))
	}
	ev, err := model.NewOutboxEvent(eventType, payload, s.now())
	if err != nil {
		return apperrors.NewInternal(err)
	}
	if !bytes.HasPrefix(ev.Payload, []byte("{")) {
		return apperrors.NewInternal(fmt.Errorf("%s payload must be a JSON object", eventType))
	}
	if err := s.outboxRepo.Create(ctx, ev); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().
		Str("event_id", ev.ID.String()).
		Str("event_type", eventType).
		Msg("event queued")
	return nil
}

package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Domain event types written to the outbox.
const (
	EventFamilyCreated              = "family.created"
	EventFamilyDeleted              = "family.deleted"
	EventAppointmentCreated         = "appointment.created"
	EventAppointmentCompleted       = "appointment.completed"
	EventAppointmentDeleted         = "appointment.deleted"
	EventPaymentRecorded            = "payment.recorded"
	EventHospitalAppointmentCreated = "hospital_appointment.created"
	EventHealthRecordCreated        = "health_record.created"
	EventUserStatusChanged          = "user.status_changed"
)

var knownEvents = map[string]bool{
	EventFamilyCreated:              true,
	EventFamilyDeleted:              true,
	EventAppointmentCreated:         true,
	EventAppointmentCompleted:       true,
	EventAppointmentDeleted:         true,
	EventPaymentRecorded:            true,
	EventHospitalAppointmentCreated: true,
	EventHealthRecordCreated:        true,
	EventUserStatusChanged:          true,
}

// KnownEvent reports whether eventType is one the worker can route.
func KnownEvent(eventType string) bool { return knownEvents[eventType] }

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// NewOutboxEvent encodes payload into a pending event.
func NewOutboxEvent(eventType string, payload interface{}, now time.Time) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return &OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   raw,
		Status:    OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

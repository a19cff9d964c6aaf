package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

const (
	AppointmentTypeRegular   = "regular"
	AppointmentTypeMakeup    = "makeup"
	AppointmentTypeEmergency = "emergency"
)

type ServiceType struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     *string   `json:"description" db:"description"`
	DefaultDuration *int      `json:"default_duration" db:"default_duration"`
	BasePrice       *float64  `json:"base_price" db:"base_price"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Appointment is a scheduled home visit.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id"`
	RecorderID      uuid.UUID         `db:"recorder_id"`
	ServiceTypeID   *uuid.UUID        `db:"service_type_id"`
	ScheduledDate   Date              `db:"scheduled_date"`
	StartTime       Clock             `db:"start_time"`
	EndTime         *Clock            `db:"end_time"`
	AppointmentType string            `db:"appointment_type"`
	Status          AppointmentStatus `db:"status"`
	Notes           *string           `db:"notes"`
}

// DurationMinutes is end minus start, or nil without an end time.
func (a *Appointment) DurationMinutes() *int {
	if a.EndTime == nil {
		return nil
	}
	d := a.EndTime.Minutes() - a.StartTime.Minutes()
	return &d
}

// AppointmentView is the list shape of an appointment.
type AppointmentView struct {
	ID              uuid.UUID         `json:"id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	RecorderID      uuid.UUID         `json:"recorder_id"`
	ServiceTypeID   *uuid.UUID        `json:"service_type_id"`
	ScheduledDate   Date              `json:"scheduled_date"`
	StartTime       Clock             `json:"start_time"`
	EndTime         *Clock            `json:"end_time"`
	DurationMinutes *int              `json:"duration_minutes"`
	AppointmentType string            `json:"appointment_type"`
	Status          AppointmentStatus `json:"status"`
	Notes           *string           `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func NewAppointmentView(a *Appointment) AppointmentView {
	return AppointmentView{
		ID:              a.ID,
		PatientID:       a.PatientID,
		RecorderID:      a.RecorderID,
		ServiceTypeID:   a.ServiceTypeID,
		ScheduledDate:   a.ScheduledDate,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		DurationMinutes: a.DurationMinutes(),
		AppointmentType: a.AppointmentType,
		Status:          a.Status,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// PatientSummary is the patient block embedded in appointment responses.
type PatientSummary struct {
	ID     uuid.UUID      `json:"id"`
	Name   string         `json:"name"`
	Age    int            `json:"age"`
	Gender string         `json:"gender"`
	Phone  *string        `json:"phone"`
	Family *FamilySummary `json:"family"`
}

type FamilySummary struct {
	ID            uuid.UUID `json:"id"`
	HouseholdHead string    `json:"householdHead"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
}

// AppointmentWithPatient is the shape of today's schedule.
type AppointmentWithPatient struct {
	AppointmentView
	Patient *PatientSummary `json:"patient"`
}

// AppointmentDetail is the single appointment shape.
type AppointmentDetail struct {
	AppointmentView
	Patient     *PatientSummary `json:"patient"`
	ServiceType *ServiceType    `json:"service_type"`
	Payment     *Payment        `json:"payment"`
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID     `json:"patient_id" binding:"required"`
	ServiceTypeID   *uuid.UUID    `json:"service_type_id"`
	ScheduledDate   string        `json:"scheduled_date" binding:"required,date"`
	StartTime       string        `json:"start_time" binding:"required,clock"`
	EndTime         *string       `json:"end_time" binding:"omitempty,clock"`
	AppointmentType string        `json:"appointment_type" binding:"omitempty,oneof=regular makeup emergency"`
	Status          string        `json:"status" binding:"omitempty,oneof=scheduled confirmed completed cancelled rescheduled"`
	Notes           *string       `json:"notes"`
	Payment         *PaymentInput `json:"payment"`
}

// UpdateAppointmentRequest is a partial update; only non-nil fields are
// written.
type UpdateAppointmentRequest struct {
	PatientID       *uuid.UUID    `json:"patient_id"`
	ServiceTypeID   *uuid.UUID    `json:"service_type_id"`
	ScheduledDate   *string       `json:"scheduled_date" binding:"omitempty,date"`
	StartTime       *string       `json:"start_time" binding:"omitempty,clock"`
	EndTime         *string       `json:"end_time" binding:"omitempty,clock"`
	AppointmentType *string       `json:"appointment_type" binding:"omitempty,oneof=regular makeup emergency"`
	Status          *string       `json:"status" binding:"omitempty,oneof=scheduled confirmed completed cancelled rescheduled"`
	Notes           *string       `json:"notes"`
	Payment         *PaymentInput `json:"payment"`
}

// AppointmentFilter scopes listings. A nil RecorderID is unscoped.
type AppointmentFilter struct {
	RecorderID *uuid.UUID
	Statuses   []string
	DateFrom   *Date
	DateTo     *Date
	Limit      int
	Offset     int
}

type AppointmentPage struct {
	Appointments []AppointmentView `json:"appointments"`
	Total        int               `json:"total"`
	Page         int               `json:"page"`
	Limit        int               `json:"limit"`
	TotalPages   int               `json:"totalPages"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type HealthRecord struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PatientID        uuid.UUID  `json:"patient_id" db:"patient_id"`
	RecorderID       uuid.UUID  `json:"recorder_id" db:"recorder_id"`
	AppointmentID    *uuid.UUID `json:"appointment_id" db:"appointment_id"`
	VisitDate        Date       `json:"visit_date" db:"visit_date"`
	VisitTime        Clock      `json:"visit_time" db:"visit_time"`
	LocationLat      *float64   `json:"location_lat" db:"location_lat"`
	LocationLng      *float64   `json:"location_lng" db:"location_lng"`
	LocationAddress  *string    `json:"location_address" db:"location_address"`
	VitalSigns       JSONMap    `json:"vital_signs" db:"vital_signs"`
	Symptoms         *string    `json:"symptoms" db:"symptoms"`
	Notes            *string    `json:"notes" db:"notes"`
	AudioFile        *string    `json:"audio_file" db:"audio_file"`
	Photos           StringList `json:"photos" db:"photos"`
	PatientSignature *string    `json:"patient_signature" db:"patient_signature"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// CreateHealthRecordForm is the multipart form of a visit record; files
// are read separately.
type CreateHealthRecordForm struct {
	PatientID       string `form:"patient_id" binding:"required,uuid"`
	AppointmentID   string `form:"appointment_id" binding:"omitempty,uuid"`
	VisitDate       string `form:"visit_date" binding:"required,date"`
	VisitTime       string `form:"visit_time" binding:"required,clock"`
	LocationLat     string `form:"location_lat" binding:"omitempty,latitude"`
	LocationLng     string `form:"location_lng" binding:"omitempty,longitude"`
	LocationAddress string `form:"location_address"`
	VitalSigns      string `form:"vital_signs"`
	Symptoms        string `form:"symptoms"`
	Notes           string `form:"notes"`
}

// HealthRecordFilter lists a recorder's records, optionally for one patient.
type HealthRecordFilter struct {
	RecorderID *uuid.UUID
	PatientID  *uuid.UUID
	Limit      int
	Offset     int
}

type HealthRecordPage struct {
	Records    []*HealthRecord `json:"records"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

const (
	OrderTypeMedication  = "medication"
	OrderTypeExamination = "examination"
	OrderTypeLifestyle   = "lifestyle"
	OrderTypeFollowup    = "followup"
)

const (
	OrderStatusActive    = "active"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type MedicalOrder struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	PatientID      uuid.UUID  `json:"patient_id" db:"patient_id"`
	DoctorID       uuid.UUID  `json:"doctor_id" db:"doctor_id"`
	HealthRecordID *uuid.UUID `json:"health_record_id" db:"health_record_id"`
	OrderType      string     `json:"order_type" db:"order_type"`
	Content        string     `json:"content" db:"content"`
	Dosage         *string    `json:"dosage" db:"dosage"`
	Frequency      *string    `json:"frequency" db:"frequency"`
	Duration       *string    `json:"duration" db:"duration"`
	Notes          *string    `json:"notes" db:"notes"`
	Status         string     `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

type CreateMedicalOrderRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" binding:"required"`
	HealthRecordID *uuid.UUID `json:"health_record_id"`
	OrderType      string     `json:"order_type" binding:"required,oneof=medication examination lifestyle followup"`
	Content        string     `json:"content" binding:"required"`
	Dosage         *string    `json:"dosage"`
	Frequency      *string    `json:"frequency"`
	Duration       *string    `json:"duration"`
	Notes          *string    `json:"notes"`
}

type UpdateMedicalOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active completed cancelled"`
}

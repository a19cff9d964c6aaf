package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	HospitalAppointmentPending   = "pending"
	HospitalAppointmentConfirmed = "confirmed"
	HospitalAppointmentCompleted = "completed"
	HospitalAppointmentCancelled = "cancelled"
)

type PartnerHospital struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Address           string    `json:"address" db:"address"`
	Phone             *string   `json:"phone" db:"phone"`
	Level             *string   `json:"level" db:"level"`
	CooperationStatus string    `json:"cooperation_status" db:"cooperation_status"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

type HospitalDepartment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	HospitalID     uuid.UUID `json:"hospital_id" db:"hospital_id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description" db:"description"`
	AvailableTimes RawJSON   `json:"available_times" db:"available_times"`
	IsActive       bool      `json:"is_active" db:"is_active"`
}

type HospitalDoctor struct {
	ID              uuid.UUID `json:"id" db:"id"`
	HospitalID      uuid.UUID `json:"hospital_id" db:"hospital_id"`
	DepartmentID    uuid.UUID `json:"department_id" db:"department_id"`
	Name            string    `json:"name" db:"name"`
	Title           *string   `json:"title" db:"title"`
	Specialty       *string   `json:"specialty" db:"specialty"`
	Schedule        RawJSON   `json:"schedule" db:"schedule"`
	ConsultationFee *float64  `json:"consultation_fee" db:"consultation_fee"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
}

type HospitalAppointment struct {
	Base
	PatientID         uuid.UUID  `json:"patient_id" db:"patient_id"`
	RecorderID        uuid.UUID  `json:"recorder_id" db:"recorder_id"`
	HospitalID        uuid.UUID  `json:"hospital_id" db:"hospital_id"`
	DepartmentID      uuid.UUID  `json:"department_id" db:"department_id"`
	DoctorID          *uuid.UUID `json:"doctor_id" db:"doctor_id"`
	AppointmentDate   Date       `json:"appointment_date" db:"appointment_date"`
	AppointmentTime   Clock      `json:"appointment_time" db:"appointment_time"`
	Status            string     `json:"status" db:"status"`
	AppointmentNumber *string    `json:"appointment_number" db:"appointment_number"`
	Fee               *float64   `json:"fee" db:"fee"`
	Notes             *string    `json:"notes" db:"notes"`
	ResultNotes       *string    `json:"result_notes" db:"result_notes"`
}

// HospitalAppointmentView adds display names resolved by join.
type HospitalAppointmentView struct {
	HospitalAppointment
	PatientName    string  `json:"patient_name" db:"patient_name"`
	HospitalName   string  `json:"hospital_name" db:"hospital_name"`
	DepartmentName string  `json:"department_name" db:"department_name"`
	DoctorName     *string `json:"doctor_name" db:"doctor_name"`
}

type HospitalFilter struct {
	Search     string
	Department string
}

type CreateHospitalAppointmentRequest struct {
	PatientID       uuid.UUID  `json:"patient_id" binding:"required"`
	HospitalID      uuid.UUID  `json:"hospital_id" binding:"required"`
	DepartmentID    uuid.UUID  `json:"department_id" binding:"required"`
	DoctorID        *uuid.UUID `json:"doctor_id"`
	AppointmentDate string     `json:"appointment_date" binding:"required,date"`
	AppointmentTime string     `json:"appointment_time" binding:"required,clock"`
	Notes           *string    `json:"notes"`
}

type UpdateHospitalAppointmentRequest struct {
	Status            *string  `json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	AppointmentNumber *string  `json:"appointment_number"`
	Fee               *float64 `json:"fee" binding:"omitempty,gte=0"`
	ResultNotes       *string  `json:"result_notes"`
}

type HospitalAppointmentFilter struct {
	RecorderID *uuid.UUID
	Status     string
	Limit      int
	Offset     int
}

type HospitalAppointmentPage struct {
	Appointments []*HospitalAppointmentView `json:"appointments"`
	Total        int                        `json:"total"`
	Page         int                        `json:"page"`
	Limit        int                        `json:"limit"`
	TotalPages   int                        `json:"totalPages"`
}

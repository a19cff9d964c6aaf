package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleRecorder Role = "recorder"
	RoleAdmin    Role = "admin"
	RoleDoctor   Role = "doctor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleRecorder, RoleAdmin, RoleDoctor:
		return true
	}
	return false
}

// User status constants
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User is a login identity for recorders, doctors and administrators
type User struct {
	Base
	Username     string     `json:"username" db:"username"`
	Phone        string     `json:"phone" db:"phone"`
	Email        *string    `json:"email,omitempty" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	Name         string     `json:"name" db:"name"`
	Avatar       *string    `json:"avatar" db:"avatar"`
	Status       string     `json:"status" db:"status"`
	LastLogin    *time.Time `json:"last_login" db:"last_login"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Recorder is the field staff profile of a recorder user.
type Recorder struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	EmployeeID        string    `json:"employee_id" db:"employee_id"`
	QualificationCert *string   `json:"qualification_cert" db:"qualification_cert"`
	HealthCert        *string   `json:"health_cert" db:"health_cert"`
	CertExpiryDate    *Date     `json:"cert_expiry_date" db:"cert_expiry_date"`
	WorkArea          *RawJSON  `json:"work_area" db:"work_area"`
	IsOnDuty          bool      `json:"is_on_duty" db:"is_on_duty"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Doctor is the clinical profile of a doctor user.
type Doctor struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	LicenseNumber   string    `json:"license_number" db:"license_number"`
	Specialty       string    `json:"specialty" db:"specialty"`
	Hospital        *string   `json:"hospital" db:"hospital"`
	Department      *string   `json:"department" db:"department"`
	Title           *string   `json:"title" db:"title"`
	ConsultationFee *float64  `json:"consultation_fee" db:"consultation_fee"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ExpiringCertificate joins a recorder profile with the contact data
// needed to notify them.
type ExpiringCertificate struct {
	RecorderID     uuid.UUID `db:"recorder_id"`
	EmployeeID     string    `db:"employee_id"`
	Name           string    `db:"name"`
	Phone          string    `db:"phone"`
	Email          *string   `db:"email"`
	CertExpiryDate Date      `db:"cert_expiry_date"`
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role   Role
	Status string
	Search string
	Limit  int
	Offset int
}

type UserPage struct {
	Users      []*User `json:"users"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription status constants
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPaused    = "paused"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// Subscription payment status constants
const (
	SubscriptionPaid     = "paid"
	SubscriptionUnpaid   = "unpaid"
	SubscriptionRefunded = "refunded"
)

// Defaults for packages created on the fly from a family's packageType.
const (
	DefaultPackageDurationDays = 30
	DefaultPackageFrequency    = 4
	DefaultPackageDescPrefix   = "默认"
)

type ServicePackage struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Description        *string    `json:"description" db:"description"`
	Price              float64    `json:"price" db:"price"`
	DurationDays       int        `json:"duration_days" db:"duration_days"`
	ServiceFrequency   int        `json:"service_frequency" db:"service_frequency"`
	ServiceItems       StringList `json:"service_items" db:"service_items"`
	PackageLevel       *int       `json:"package_level" db:"package_level"`
	IsSystemDefault    bool       `json:"is_system_default" db:"is_system_default"`
	TargetUsers        *string    `json:"target_users" db:"target_users"`
	StaffLevel         *string    `json:"staff_level" db:"staff_level"`
	HospitalLevel      *string    `json:"hospital_level" db:"hospital_level"`
	ServiceTime        *string    `json:"service_time" db:"service_time"`
	ReportFrequency    *string    `json:"report_frequency" db:"report_frequency"`
	ServiceContent     StringList `json:"service_content" db:"service_content"`
	MonitoringItems    StringList `json:"monitoring_items" db:"monitoring_items"`
	AdditionalServices StringList `json:"additional_services" db:"additional_services"`
	GiftsIncluded      StringList `json:"gifts_included" db:"gifts_included"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// NewDefaultPackage builds the placeholder package used when a family names
// a package that does not exist yet.
func NewDefaultPackage(name string, now time.Time) *ServicePackage {
	desc := DefaultPackageDescPrefix + name
	return &ServicePackage{
		ID:               uuid.New(),
		Name:             name,
		Description:      &desc,
		Price:            0,
		DurationDays:     DefaultPackageDurationDays,
		ServiceFrequency: DefaultPackageFrequency,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

type PatientSubscription struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	PatientID     uuid.UUID  `json:"patient_id" db:"patient_id"`
	PackageID     uuid.UUID  `json:"package_id" db:"package_id"`
	RecorderID    *uuid.UUID `json:"recorder_id" db:"recorder_id"`
	StartDate     Date       `json:"start_date" db:"start_date"`
	EndDate       Date       `json:"end_date" db:"end_date"`
	Status        string     `json:"status" db:"status"`
	PaymentStatus string     `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type ServicePackageRequest struct {
	Name               string     `json:"name" binding:"required"`
	Description        *string    `json:"description"`
	Price              float64    `json:"price" binding:"gte=0"`
	DurationDays       int        `json:"duration_days" binding:"required,gt=0"`
	ServiceFrequency   int        `json:"service_frequency" binding:"required,gt=0"`
	ServiceItems       StringList `json:"service_items"`
	PackageLevel       *int       `json:"package_level" binding:"omitempty,min=1,max=10"`
	IsSystemDefault    bool       `json:"is_system_default"`
	TargetUsers        *string    `json:"target_users"`
	StaffLevel         *string    `json:"staff_level"`
	HospitalLevel      *string    `json:"hospital_level"`
	ServiceTime        *string    `json:"service_time"`
	ReportFrequency    *string    `json:"report_frequency"`
	ServiceContent     StringList `json:"service_content"`
	MonitoringItems    StringList `json:"monitoring_items"`
	AdditionalServices StringList `json:"additional_services"`
	GiftsIncluded      StringList `json:"gifts_included"`
	IsActive           *bool      `json:"is_active"`
}

// Apply copies the request onto p.
func (r *ServicePackageRequest) Apply(p *ServicePackage) {
	p.Name = r.Name
	p.Description = r.Description
	p.Price = r.Price
	p.DurationDays = r.DurationDays
	p.ServiceFrequency = r.ServiceFrequency
	p.ServiceItems = r.ServiceItems
	p.PackageLevel = r.PackageLevel
	p.IsSystemDefault = r.IsSystemDefault
	p.TargetUsers = r.TargetUsers
	p.StaffLevel = r.StaffLevel
	p.HospitalLevel = r.HospitalLevel
	p.ServiceTime = r.ServiceTime
	p.ReportFrequency = r.ReportFrequency
	p.ServiceContent = r.ServiceContent
	p.MonitoringItems = r.MonitoringItems
	p.AdditionalServices = r.AdditionalServices
	p.GiftsIncluded = r.GiftsIncluded
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

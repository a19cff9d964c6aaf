package model

import (
	"github.com/google/uuid"
)

const (
	RelationshipHead     = "head"
	DefaultPackageType   = "基础套餐"
	DefaultPaymentStatus = "normal"
)

// Family is a household. Members always includes the head patient.
type Family struct {
	Base
	HouseholdHead    string     `json:"householdHead" db:"household_head"`
	Address          string     `json:"address" db:"address"`
	Phone            string     `json:"phone" db:"phone"`
	EmergencyContact *string    `json:"emergency_contact" db:"emergency_contact"`
	EmergencyPhone   *string    `json:"emergency_phone" db:"emergency_phone"`
	Members          []*Patient `json:"members" db:"-"`
	TotalMembers     int        `json:"totalMembers" db:"-"`
}

// SetMembers attaches members and keeps the count in sync.
func (f *Family) SetMembers(members []*Patient) {
	if members == nil {
		members = []*Patient{}
	}
	f.Members = members
	f.TotalMembers = len(members)
}

type Patient struct {
	Base
	FamilyID      uuid.UUID `json:"family_id" db:"family_id"`
	Name          string    `json:"name" db:"name"`
	Age           int       `json:"age" db:"age"`
	Gender        string    `json:"gender" db:"gender"`
	Relationship  string    `json:"relationship" db:"relationship"`
	Conditions    string    `json:"conditions" db:"conditions"`
	PackageType   string    `json:"packageType" db:"package_type"`
	PaymentStatus string    `json:"paymentStatus" db:"payment_status"`
	LastService   *Date     `json:"lastService" db:"last_service"`
	Phone         *string   `json:"phone" db:"phone"`
	Medications   string    `json:"medications" db:"medications"`
	IsActive      bool      `json:"is_active" db:"is_active"`
}

func (p *Patient) IsHead() bool {
	return p.Relationship == RelationshipHead
}

// HeadInput describes the household head, whose name and phone come from
// the family header.
type HeadInput struct {
	Age           int      `json:"age" binding:"gte=0,lte=150"`
	Gender        string   `json:"gender" binding:"omitempty,gender"`
	Conditions    FlexText `json:"conditions"`
	Medications   FlexText `json:"medications"`
	PackageType   string   `json:"packageType"`
	PaymentStatus string   `json:"paymentStatus"`
}

type MemberInput struct {
	Name          string   `json:"name" binding:"required"`
	Age           int      `json:"age" binding:"gte=0,lte=150"`
	Gender        string   `json:"gender" binding:"required,gender"`
	Relationship  string   `json:"relationship" binding:"required"`
	Conditions    FlexText `json:"conditions"`
	Medications   FlexText `json:"medications"`
	Phone         *string  `json:"phone"`
	PackageType   string   `json:"packageType"`
	PaymentStatus string   `json:"paymentStatus"`
}

type CreateFamilyRequest struct {
	HouseholdHead    string        `json:"householdHead" binding:"required"`
	Address          string        `json:"address" binding:"required"`
	Phone            string        `json:"phone" binding:"required"`
	EmergencyContact *string       `json:"emergency_contact"`
	EmergencyPhone   *string       `json:"emergency_phone"`
	Head             *HeadInput    `json:"head"`
	Members          []MemberInput `json:"members" binding:"omitempty,dive"`
}

// UpdateFamilyRequest is a partial update. A non-nil Members replaces
// every non-head member.
type UpdateFamilyRequest struct {
	HouseholdHead    *string        `json:"householdHead" binding:"omitempty,min=1"`
	Address          *string        `json:"address" binding:"omitempty,min=1"`
	Phone            *string        `json:"phone" binding:"omitempty,min=1"`
	EmergencyContact *string        `json:"emergency_contact"`
	EmergencyPhone   *string        `json:"emergency_phone"`
	Members          *[]MemberInput `json:"members" binding:"omitempty,dive"`
}

type UpdateMemberRequest struct {
	Name          *string   `json:"name" binding:"omitempty,min=1"`
	Age           *int      `json:"age" binding:"omitempty,gte=0,lte=150"`
	Gender        *string   `json:"gender" binding:"omitempty,gender"`
	Relationship  *string   `json:"relationship" binding:"omitempty,min=1"`
	Conditions    *FlexText `json:"conditions"`
	Medications   *FlexText `json:"medications"`
	Phone         *string   `json:"phone"`
	PackageType   *string   `json:"packageType"`
	PaymentStatus *string   `json:"paymentStatus"`
	LastService   *string   `json:"lastService" binding:"omitempty,date"`
}

// FamilyFilter scopes a family listing. A nil RecorderID lists every family.
type FamilyFilter struct {
	RecorderID *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

type FamilyPage struct {
	Families   []*Family `json:"families"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// PatientDetail is a member with the subscriptions bound to them.
type PatientDetail struct {
	*Patient
	Subscriptions []*PatientSubscription `json:"subscriptions"`
}

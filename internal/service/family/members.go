package family

import (
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func newHead(family *model.Family, in *model.HeadInput, now time.Time) *model.Patient {
	if in == nil {
		in = &model.HeadInput{}
	}
	phone := family.Phone
	head := &model.Patient{
		FamilyID:      family.ID,
		Name:          family.HouseholdHead,
		Age:           in.Age,
		Gender:        in.Gender,
		Relationship:  model.RelationshipHead,
		Conditions:    string(in.Conditions),
		Medications:   string(in.Medications),
		PackageType:   orDefault(in.PackageType, model.DefaultPackageType),
		PaymentStatus: orDefault(in.PaymentStatus, model.DefaultPaymentStatus),
		Phone:         &phone,
		IsActive:      true,
	}
	head.Touch(now)
	return head
}

func newMember(familyID uuid.UUID, in *model.MemberInput, now time.Time) *model.Patient {
	member := &model.Patient{
		FamilyID:      familyID,
		Name:          in.Name,
		Age:           in.Age,
		Gender:        in.Gender,
		Relationship:  in.Relationship,
		Conditions:    string(in.Conditions),
		Medications:   string(in.Medications),
		PackageType:   orDefault(in.PackageType, model.DefaultPackageType),
		PaymentStatus: orDefault(in.PaymentStatus, model.DefaultPaymentStatus),
		Phone:         in.Phone,
		IsActive:      true,
	}
	member.Touch(now)
	return member
}

func checkRelationships(members []model.MemberInput) error {
	for _, m := range members {
		if m.Relationship == model.RelationshipHead {
			return apperrors.NewValidation(errReservedHead, nil)
		}
	}
	return nil
}

// applyFamilyUpdate reports whether a field mirrored on the head changed.
func applyFamilyUpdate(f *model.Family, req *model.UpdateFamilyRequest) bool {
	headChanged := false
	if req.HouseholdHead != nil && *req.HouseholdHead != f.HouseholdHead {
		f.HouseholdHead = *req.HouseholdHead
		headChanged = true
	}
	if req.Phone != nil && *req.Phone != f.Phone {
		f.Phone = *req.Phone
		headChanged = true
	}
	if req.Address != nil {
		f.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		f.EmergencyContact = req.EmergencyContact
	}
	if req.EmergencyPhone != nil {
		f.EmergencyPhone = req.EmergencyPhone
	}
	return headChanged
}

func applyMemberUpdate(p *model.Patient, req *model.UpdateMemberRequest) error {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Relationship != nil {
		p.Relationship = *req.Relationship
	}
	if req.Conditions != nil {
		p.Conditions = string(*req.Conditions)
	}
	if req.Medications != nil {
		p.Medications = string(*req.Medications)
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.PackageType != nil {
		p.PackageType = *req.PackageType
	}
	if req.PaymentStatus != nil {
		p.PaymentStatus = *req.PaymentStatus
	}
	if req.LastService != nil {
		d, err := model.ParseDate(*req.LastService)
		if err != nil {
			return apperrors.NewValidation("lastService must be YYYY-MM-DD", err)
		}
		p.LastService = &d
	}
	return nil
}

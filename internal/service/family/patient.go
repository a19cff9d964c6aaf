package family

import (
	"context"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
	apperrors "github.com/homecare/visit-api/pkg/errors"
)

// Patient loads one member with its subscriptions. Out-of-scope members
// are reported as not found.
func (s *Service) Patient(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.PatientDetail, error) {
	patient, err := s.repos.Patients.GetByID(ctx, id, recorderID)
	if err != nil {
		return nil, apperrors.Wrap("get patient", err)
	}
	subs, err := s.repos.Subscriptions.ListByPatient(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("list subscriptions", err)
	}
	if subs == nil {
		subs = []*model.PatientSubscription{}
	}
	return &model.PatientDetail{Patient: patient, Subscriptions: subs}, nil
}

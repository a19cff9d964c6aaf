package family

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/internal/service/event"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/pagination"
)

const (
	errLastMember    = "cannot delete the family's last member"
	errHouseholdHead = "cannot delete the household head"
	errReservedHead  = "relationship 'head' is reserved for the household head"
)

// Repositories groups the stores the family service writes to.
type Repositories struct {
	Families      repository.FamilyRepository
	Patients      repository.PatientRepository
	Packages      repository.ServicePackageRepository
	Subscriptions repository.SubscriptionRepository
}

// Service manages families, their members and the head's subscription.
// Every method taking a recorderID scopes reads to that recorder's
// caseload when it is non-nil.
type Service struct {
	tx      repository.Transactor
	repos   Repositories
	events  event.Emitter
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(tx repository.Transactor, repos Repositories, events event.Emitter, m *metrics.Metrics) *Service {
	return &Service{
		tx:      tx,
		repos:   repos,
		events:  events,
		metrics: m,
		now:     time.Now,
	}
}

type familyEvent struct {
	FamilyID   uuid.UUID  `json:"family_id"`
	RecorderID *uuid.UUID `json:"recorder_id,omitempty"`
	Members    int        `json:"members,omitempty"`
}

// Create registers a family, materializes its head as a patient and
// subscribes the head to the named package. All rows commit together.
func (s *Service) Create(ctx context.Context, req *model.CreateFamilyRequest, recorderID *uuid.UUID) (*model.Family, error) {
	if strings.TrimSpace(req.HouseholdHead) == "" || strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, apperrors.NewValidation("householdHead, address and phone are required", nil)
	}
	if err := checkRelationships(req.Members); err != nil {
		return nil, err
	}

	now := s.now()
	family := &model.Family{
		HouseholdHead:    req.HouseholdHead,
		Address:          req.Address,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
	}
	family.Touch(now)

	head := newHead(family, req.Head, now)
	members := []*model.Patient{head}
	for i := range req.Members {
		members = append(members, newMember(family.ID, &req.Members[i], now))
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Families.Create(ctx, family); err != nil {
			return err
		}
		for _, m := range members {
			if err := s.repos.Patients.Create(ctx, m); err != nil {
				return err
			}
		}
		if err := s.subscribe(ctx, head, recorderID, now); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventFamilyCreated, familyEvent{
			FamilyID:   family.ID,
			RecorderID: recorderID,
			Members:    len(members),
		})
	})
	if err != nil {
		return nil, apperrors.Wrap("create family", err)
	}

	family.SetMembers(members)
	if s.metrics != nil {
		s.metrics.FamiliesCreated.Inc()
	}
	return family, nil
}

// subscribe binds the head to its package, creating a default package
// when none with that name exists yet.
func (s *Service) subscribe(ctx context.Context, head *model.Patient, recorderID *uuid.UUID, now time.Time) error {
	pkg, err := s.repos.Packages.GetByName(ctx, head.PackageType)
	if apperrors.IsNotFound(err) {
		pkg = model.NewDefaultPackage(head.PackageType, now)
		err = s.repos.Packages.Create(ctx, pkg)
	}
	if err != nil {
		return err
	}

	start := model.NewDate(now)
	return s.repos.Subscriptions.Create(ctx, &model.PatientSubscription{
		ID:            uuid.New(),
		PatientID:     head.ID,
		PackageID:     pkg.ID,
		RecorderID:    recorderID,
		StartDate:     start,
		EndDate:       start.AddDays(pkg.DurationDays),
		Status:        model.SubscriptionStatusActive,
		PaymentStatus: model.SubscriptionUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (s *Service) List(ctx context.Context, recorderID *uuid.UUID, page pagination.Params, search string) (*model.FamilyPage, error) {
	families, total, err := s.repos.Families.List(ctx, model.FamilyFilter{
		RecorderID: recorderID,
		Search:     strings.TrimSpace(search),
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, apperrors.Wrap("list families", err)
	}
	if err := s.attachMembers(ctx, families...); err != nil {
		return nil, err
	}

	return &model.FamilyPage{
		Families:   families,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Family, error) {
	family, err := s.repos.Families.Get(ctx, id, recorderID)
	if err != nil {
		return nil, apperrors.Wrap("get family", err)
	}
	if err := s.attachMembers(ctx, family); err != nil {
		return nil, err
	}
	return family, nil
}

// Random picks one family from the caller's scope.
func (s *Service) Random(ctx context.Context, recorderID *uuid.UUID) (*model.Family, error) {
	id, err := s.repos.Families.RandomID(ctx, recorderID)
	if err != nil {
		return nil, apperrors.Wrap("pick family", err)
	}
	return s.Get(ctx, id, recorderID)
}

// Update patches the header. Head name and phone follow the header.
// A non-nil Members replaces every non-head member.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateFamilyRequest, recorderID *uuid.UUID) (*model.Family, error) {
	if req.Members != nil {
		if err := checkRelationships(*req.Members); err != nil {
			return nil, err
		}
	}

	var family *model.Family
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		family, err = s.repos.Families.Get(ctx, id, recorderID)
		if err != nil {
			return err
		}

		now := s.now()
		headChanged := applyFamilyUpdate(family, req)
		family.UpdatedAt = now
		if err := s.repos.Families.Update(ctx, family); err != nil {
			return err
		}

		if headChanged {
			if err := s.syncHead(ctx, family, now); err != nil {
				return err
			}
		}

		if req.Members != nil {
			if err := s.repos.Patients.DeleteNonHead(ctx, family.ID); err != nil {
				return err
			}
			for i := range *req.Members {
				if err := s.repos.Patients.Create(ctx, newMember(family.ID, &(*req.Members)[i], now)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap("update family", err)
	}

	if err := s.attachMembers(ctx, family); err != nil {
		return nil, err
	}
	return family, nil
}

// syncHead copies header name and phone onto the head patient. Families
// registered before heads were materialized have none and are skipped.
func (s *Service) syncHead(ctx context.Context, family *model.Family, now time.Time) error {
	head, err := s.repos.Patients.GetHead(ctx, family.ID)
	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	phone := family.Phone
	head.Name = family.HouseholdHead
	head.Phone = &phone
	head.UpdatedAt = now
	return s.repos.Patients.Update(ctx, head)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repos.Families.Get(ctx, id, recorderID); err != nil {
			return err
		}
		if err := s.repos.Families.Delete(ctx, id); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventFamilyDeleted, familyEvent{FamilyID: id, RecorderID: recorderID})
	})
	return apperrors.Wrap("delete family", err)
}

func (s *Service) AddMember(ctx context.Context, familyID uuid.UUID, in *model.MemberInput, recorderID *uuid.UUID) (*model.Patient, error) {
	if in.Relationship == model.RelationshipHead {
		return nil, apperrors.NewValidation(errReservedHead, nil)
	}

	now := s.now()
	member := newMember(familyID, in, now)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repos.Families.Get(ctx, familyID, recorderID); err != nil {
			return err
		}
		if err := s.repos.Patients.Create(ctx, member); err != nil {
			return err
		}
		return s.repos.Families.Touch(ctx, familyID, now)
	})
	if err != nil {
		return nil, apperrors.Wrap("add family member", err)
	}
	return member, nil
}

// UpdateMember patches one member. Name and phone edits on the head are
// written back to the family header.
func (s *Service) UpdateMember(ctx context.Context, familyID, memberID uuid.UUID, req *model.UpdateMemberRequest, recorderID *uuid.UUID) (*model.Patient, error) {
	var member *model.Patient
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		family, err := s.repos.Families.Get(ctx, familyID, recorderID)
		if err != nil {
			return err
		}
		member, err = s.repos.Patients.Get(ctx, memberID, familyID, recorderID)
		if err != nil {
			return err
		}

		wasHead := member.IsHead()
		if err := applyMemberUpdate(member, req); err != nil {
			return err
		}
		if wasHead != member.IsHead() {
			return apperrors.NewValidation(errReservedHead, nil)
		}

		now := s.now()
		member.UpdatedAt = now
		if err := s.repos.Patients.Update(ctx, member); err != nil {
			return err
		}

		if wasHead && (req.Name != nil || req.Phone != nil) {
			family.HouseholdHead = member.Name
			if member.Phone != nil {
				family.Phone = *member.Phone
			}
			family.UpdatedAt = now
			return s.repos.Families.Update(ctx, family)
		}
		return s.repos.Families.Touch(ctx, familyID, now)
	})
	if err != nil {
		return nil, apperrors.Wrap("update family member", err)
	}
	return member, nil
}

// DeleteMember removes a member. The family's last member and the head
// cannot be removed.
func (s *Service) DeleteMember(ctx context.Context, familyID, memberID uuid.UUID, recorderID *uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.repos.Patients.Get(ctx, memberID, familyID, recorderID)
		if err != nil {
			return err
		}

		count, err := s.repos.Patients.CountByFamily(ctx, familyID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return apperrors.NewBusinessRule(errLastMember)
		}
		if member.IsHead() {
			return apperrors.NewBusinessRule(errHouseholdHead)
		}

		if err := s.repos.Patients.Delete(ctx, member.ID); err != nil {
			return err
		}
		return s.repos.Families.Touch(ctx, familyID, s.now())
	})
	return apperrors.Wrap("delete family member", err)
}

func (s *Service) attachMembers(ctx context.Context, families ...*model.Family) error {
	if len(families) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(families))
	for i, f := range families {
		ids[i] = f.ID
	}

	patients, err := s.repos.Patients.ListByFamilies(ctx, ids)
	if err != nil {
		return apperrors.Wrap("load family members", err)
	}

	byFamily := make(map[uuid.UUID][]*model.Patient, len(families))
	for _, p := range patients {
		byFamily[p.FamilyID] = append(byFamily[p.FamilyID], p)
	}
	for _, f := range families {
		f.SetMembers(byFamily[f.ID])
	}
	return nil
}

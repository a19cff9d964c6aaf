package hospital

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/internal/service/event"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/pagination"
)

// Service books referrals at partner hospitals.
type Service struct {
	tx        repository.Transactor
	hospitals repository.HospitalRepository
	patients  repository.PatientRepository
	events    event.Emitter
	now       func() time.Time
}

func NewService(tx repository.Transactor, hospitals repository.HospitalRepository, patients repository.PatientRepository, events event.Emitter) *Service {
	return &Service{
		tx:        tx,
		hospitals: hospitals,
		patients:  patients,
		events:    events,
		now:       time.Now,
	}
}

type referralEvent struct {
	AppointmentID   uuid.UUID `json:"hospital_appointment_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	HospitalID      uuid.UUID `json:"hospital_id"`
	DepartmentID    uuid.UUID `json:"department_id"`
	AppointmentDate string    `json:"appointment_date"`
}

func (s *Service) ListHospitals(ctx context.Context, filter model.HospitalFilter) ([]*model.PartnerHospital, error) {
	hospitals, err := s.hospitals.ListHospitals(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap("list hospitals", err)
	}
	if hospitals == nil {
		hospitals = []*model.PartnerHospital{}
	}
	return hospitals, nil
}

func (s *Service) Departments(ctx context.Context, hospitalID uuid.UUID) ([]*model.HospitalDepartment, error) {
	if _, err := s.hospitals.GetHospital(ctx, hospitalID); err != nil {
		return nil, apperrors.Wrap("load hospital", err)
	}
	departments, err := s.hospitals.ListDepartments(ctx, hospitalID)
	if err != nil {
		return nil, apperrors.Wrap("list departments", err)
	}
	if departments == nil {
		departments = []*model.HospitalDepartment{}
	}
	return departments, nil
}

func (s *Service) Doctors(ctx context.Context, hospitalID, departmentID uuid.UUID) ([]*model.HospitalDoctor, error) {
	if _, err := s.hospitals.GetDepartment(ctx, hospitalID, departmentID); err != nil {
		return nil, apperrors.Wrap("load department", err)
	}
	doctors, err := s.hospitals.ListDoctors(ctx, hospitalID, departmentID)
	if err != nil {
		return nil, apperrors.Wrap("list doctors", err)
	}
	if doctors == nil {
		doctors = []*model.HospitalDoctor{}
	}
	return doctors, nil
}

// CreateAppointment books a pending referral. The department must belong
// to the hospital and the doctor, when given, to that department.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateHospitalAppointmentRequest, recorderID uuid.UUID, scope *uuid.UUID) (*model.HospitalAppointmentView, error) {
	date, err := model.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, apperrors.NewValidation("appointment_date must be YYYY-MM-DD", err)
	}
	clock, err := model.ParseClock(req.AppointmentTime)
	if err != nil {
		return nil, apperrors.NewValidation("appointment_time must be HH:MM", err)
	}

	if _, err := s.patients.GetByID(ctx, req.PatientID, scope); err != nil {
		return nil, apperrors.Wrap("load patient", err)
	}
	if _, err := s.hospitals.GetDepartment(ctx, req.HospitalID, req.DepartmentID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidation("department does not belong to the hospital", err)
		}
		return nil, apperrors.Wrap("load department", err)
	}
	if req.DoctorID != nil {
		doctor, err := s.hospitals.GetDoctor(ctx, *req.DoctorID)
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidation("unknown doctor_id", err)
		}
		if err != nil {
			return nil, apperrors.Wrap("load doctor", err)
		}
		if doctor.HospitalID != req.HospitalID || doctor.DepartmentID != req.DepartmentID {
			return nil, apperrors.NewValidation("doctor does not work in the department", nil)
		}
	}

	appt := &model.HospitalAppointment{
		PatientID:       req.PatientID,
		RecorderID:      recorderID,
		HospitalID:      req.HospitalID,
		DepartmentID:    req.DepartmentID,
		DoctorID:        req.DoctorID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          model.HospitalAppointmentPending,
		Notes:           req.Notes,
	}
	appt.Touch(s.now())

	var view *model.HospitalAppointmentView
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.hospitals.CreateAppointment(ctx, appt); err != nil {
			return err
		}
		if err := s.events.Emit(ctx, model.EventHospitalAppointmentCreated, referralEvent{
			AppointmentID:   appt.ID,
			PatientID:       appt.PatientID,
			HospitalID:      appt.HospitalID,
			DepartmentID:    appt.DepartmentID,
			AppointmentDate: appt.AppointmentDate.String(),
		}); err != nil {
			return err
		}
		view, err = s.hospitals.GetAppointment(ctx, appt.ID, nil)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap("create hospital appointment", err)
	}
	return view, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID, scope *uuid.UUID) (*model.HospitalAppointmentView, error) {
	view, err := s.hospitals.GetAppointment(ctx, id, scope)
	if err != nil {
		return nil, apperrors.Wrap("load hospital appointment", err)
	}
	return view, nil
}

func (s *Service) ListAppointments(ctx context.Context, scope *uuid.UUID, status string, page pagination.Params) (*model.HospitalAppointmentPage, error) {
	views, total, err := s.hospitals.ListAppointments(ctx, model.HospitalAppointmentFilter{
		RecorderID: scope,
		Status:     status,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, apperrors.Wrap("list hospital appointments", err)
	}
	if views == nil {
		views = []*model.HospitalAppointmentView{}
	}
	return &model.HospitalAppointmentPage{
		Appointments: views,
		Total:        total,
		Page:         page.Page,
		Limit:        page.Limit,
		TotalPages:   page.TotalPages(total),
	}, nil
}

// UpdateAppointment applies the fields present in req.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateHospitalAppointmentRequest, scope *uuid.UUID) (*model.HospitalAppointmentView, error) {
	view, err := s.hospitals.GetAppointment(ctx, id, scope)
	if err != nil {
		return nil, apperrors.Wrap("load hospital appointment", err)
	}

	appt := &view.HospitalAppointment
	if req.Status != nil {
		switch *req.Status {
		case model.HospitalAppointmentPending, model.HospitalAppointmentConfirmed,
			model.HospitalAppointmentCompleted, model.HospitalAppointmentCancelled:
			appt.Status = *req.Status
		default:
			return nil, apperrors.NewValidation("unknown status "+*req.Status, nil)
		}
	}
	if req.AppointmentNumber != nil {
		appt.AppointmentNumber = req.AppointmentNumber
	}
	if req.Fee != nil {
		if *req.Fee < 0 {
			return nil, apperrors.NewValidation("fee must not be negative", nil)
		}
		appt.Fee = req.Fee
	}
	if req.ResultNotes != nil {
		appt.ResultNotes = req.ResultNotes
	}
	appt.UpdatedAt = s.now()

	if err := s.hospitals.UpdateAppointment(ctx, appt); err != nil {
		return nil, apperrors.Wrap("update hospital appointment", err)
	}
	return view, nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
)

// Transactor runs fn inside one database transaction. Repository calls
// made with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// All repository interfaces in one file. Lookups that take a recorderID
// pointer apply caseload scoping when it is non-nil and report
// out-of-scope rows as not found.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		// GetByLogin matches the identifier against username or phone.
		GetByLogin(ctx context.Context, identifier string) (*model.User, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
		CreateRecorder(ctx context.Context, recorder *model.Recorder) error
		GetRecorderByUserID(ctx context.Context, userID uuid.UUID) (*model.Recorder, error)
		GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		ListExpiringCertificates(ctx context.Context, from, to model.Date) ([]*model.ExpiringCertificate, error)
	}

	FamilyRepository interface {
		Create(ctx context.Context, family *model.Family) error
		Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Family, error)
		List(ctx context.Context, filter model.FamilyFilter) ([]*model.Family, int, error)
		Update(ctx context.Context, family *model.Family) error
		Touch(ctx context.Context, id uuid.UUID, at time.Time) error
		Delete(ctx context.Context, id uuid.UUID) error
		RandomID(ctx context.Context, recorderID *uuid.UUID) (uuid.UUID, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		// Get loads a member of familyID.
		Get(ctx context.Context, id, familyID uuid.UUID, recorderID *uuid.UUID) (*model.Patient, error)
		GetByID(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Patient, error)
		GetHead(ctx context.Context, familyID uuid.UUID) (*model.Patient, error)
		ListByFamilies(ctx context.Context, familyIDs []uuid.UUID) ([]*model.Patient, error)
		Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.PatientSummary, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		DeleteNonHead(ctx context.Context, familyID uuid.UUID) error
		CountByFamily(ctx context.Context, familyID uuid.UUID) (int, error)
	}

	ServicePackageRepository interface {
		Create(ctx context.Context, pkg *model.ServicePackage) error
		Update(ctx context.Context, pkg *model.ServicePackage) error
		Get(ctx context.Context, id uuid.UUID) (*model.ServicePackage, error)
		GetByName(ctx context.Context, name string) (*model.ServicePackage, error)
		List(ctx context.Context, activeOnly bool) ([]*model.ServicePackage, error)
		ListSystemDefaults(ctx context.Context) ([]*model.ServicePackage, error)
		UpsertByLevel(ctx context.Context, pkg *model.ServicePackage) error
	}

	SubscriptionRepository interface {
		Create(ctx context.Context, sub *model.PatientSubscription) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientSubscription, error)
		ExpireEndedBefore(ctx context.Context, day model.Date, now time.Time) (int64, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, int, error)
		// ListForDay orders by start time.
		ListForDay(ctx context.Context, recorderID *uuid.UUID, day model.Date, statuses []string) ([]*model.Appointment, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		Update(ctx context.Context, payment *model.Payment) error
		// GetByAppointment returns the latest payment of the appointment.
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error)
	}

	ServiceTypeRepository interface {
		ListActive(ctx context.Context) ([]*model.ServiceType, error)
		Get(ctx context.Context, id uuid.UUID) (*model.ServiceType, error)
		UpsertByName(ctx context.Context, st *model.ServiceType) error
	}

	HealthRecordRepository interface {
		Create(ctx context.Context, record *model.HealthRecord) error
		Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.HealthRecord, error)
		List(ctx context.Context, filter model.HealthRecordFilter) ([]*model.HealthRecord, int, error)
	}

	MedicalOrderRepository interface {
		Create(ctx context.Context, order *model.MedicalOrder) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalOrder, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalOrder, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	}

	HospitalRepository interface {
		ListHospitals(ctx context.Context, filter model.HospitalFilter) ([]*model.PartnerHospital, error)
		GetHospital(ctx context.Context, id uuid.UUID) (*model.PartnerHospital, error)
		ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.HospitalDepartment, error)
		GetDepartment(ctx context.Context, hospitalID, departmentID uuid.UUID) (*model.HospitalDepartment, error)
		ListDoctors(ctx context.Context, hospitalID, departmentID uuid.UUID) ([]*model.HospitalDoctor, error)
		GetDoctor(ctx context.Context, id uuid.UUID) (*model.HospitalDoctor, error)
		CreateAppointment(ctx context.Context, appt *model.HospitalAppointment) error
		GetAppointment(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.HospitalAppointmentView, error)
		ListAppointments(ctx context.Context, filter model.HospitalAppointmentFilter) ([]*model.HospitalAppointmentView, int, error)
		UpdateAppointment(ctx context.Context, appt *model.HospitalAppointment) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingEventsWithLock must run inside a transaction; rows stay
		// locked until it ends.
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkRetry(ctx context.Context, id uuid.UUID, message string, retries int) error
		MarkFailed(ctx context.Context, id uuid.UUID, message string, retries int) error
	}
)

// Package mocks holds testify mocks of the repository interfaces shared
// by the service tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/homecare/visit-api/internal/model"
)

// Transactor runs fn directly with the caller's ctx.
type Transactor struct{}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByLogin(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Int(1), args.Error(2)
}

func (m *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *UserRepository) CreateRecorder(ctx context.Context, recorder *model.Recorder) error {
	return m.Called(ctx, recorder).Error(0)
}

func (m *UserRepository) GetRecorderByUserID(ctx context.Context, userID uuid.UUID) (*model.Recorder, error) {
	args := m.Called(ctx, userID)
	recorder, _ := args.Get(0).(*model.Recorder)
	return recorder, args.Error(1)
}

func (m *UserRepository) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, userID)
	doctor, _ := args.Get(0).(*model.Doctor)
	return doctor, args.Error(1)
}

func (m *UserRepository) ListExpiringCertificates(ctx context.Context, from, to model.Date) ([]*model.ExpiringCertificate, error) {
	args := m.Called(ctx, from, to)
	certs, _ := args.Get(0).([]*model.ExpiringCertificate)
	return certs, args.Error(1)
}

type FamilyRepository struct {
	mock.Mock
}

func (m *FamilyRepository) Create(ctx context.Context, family *model.Family) error {
	return m.Called(ctx, family).Error(0)
}

func (m *FamilyRepository) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Family, error) {
	args := m.Called(ctx, id, recorderID)
	family, _ := args.Get(0).(*model.Family)
	return family, args.Error(1)
}

func (m *FamilyRepository) List(ctx context.Context, filter model.FamilyFilter) ([]*model.Family, int, error) {
	args := m.Called(ctx, filter)
	families, _ := args.Get(0).([]*model.Family)
	return families, args.Int(1), args.Error(2)
}

func (m *FamilyRepository) Update(ctx context.Context, family *model.Family) error {
	return m.Called(ctx, family).Error(0)
}

func (m *FamilyRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *FamilyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *FamilyRepository) RandomID(ctx context.Context, recorderID *uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, recorderID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id, familyID uuid.UUID, recorderID *uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id, familyID, recorderID)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) GetByID(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id, recorderID)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) GetHead(ctx context.Context, familyID uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, familyID)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) ListByFamilies(ctx context.Context, familyIDs []uuid.UUID) ([]*model.Patient, error) {
	args := m.Called(ctx, familyIDs)
	patients, _ := args.Get(0).([]*model.Patient)
	return patients, args.Error(1)
}

func (m *PatientRepository) Summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.PatientSummary, error) {
	args := m.Called(ctx, ids)
	summaries, _ := args.Get(0).(map[uuid.UUID]*model.PatientSummary)
	return summaries, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) DeleteNonHead(ctx context.Context, familyID uuid.UUID) error {
	return m.Called(ctx, familyID).Error(0)
}

func (m *PatientRepository) CountByFamily(ctx context.Context, familyID uuid.UUID) (int, error) {
	args := m.Called(ctx, familyID)
	return args.Int(0), args.Error(1)
}

type ServicePackageRepository struct {
	mock.Mock
}

func (m *ServicePackageRepository) Create(ctx context.Context, pkg *model.ServicePackage) error {
	return m.Called(ctx, pkg).Error(0)
}

func (m *ServicePackageRepository) Update(ctx context.Context, pkg *model.ServicePackage) error {
	return m.Called(ctx, pkg).Error(0)
}

func (m *ServicePackageRepository) Get(ctx context.Context, id uuid.UUID) (*model.ServicePackage, error) {
	args := m.Called(ctx, id)
	pkg, _ := args.Get(0).(*model.ServicePackage)
	return pkg, args.Error(1)
}

func (m *ServicePackageRepository) GetByName(ctx context.Context, name string) (*model.ServicePackage, error) {
	args := m.Called(ctx, name)
	pkg, _ := args.Get(0).(*model.ServicePackage)
	return pkg, args.Error(1)
}

func (m *ServicePackageRepository) List(ctx context.Context, activeOnly bool) ([]*model.ServicePackage, error) {
	args := m.Called(ctx, activeOnly)
	pkgs, _ := args.Get(0).([]*model.ServicePackage)
	return pkgs, args.Error(1)
}

func (m *ServicePackageRepository) ListSystemDefaults(ctx context.Context) ([]*model.ServicePackage, error) {
	args := m.Called(ctx)
	pkgs, _ := args.Get(0).([]*model.ServicePackage)
	return pkgs, args.Error(1)
}

func (m *ServicePackageRepository) UpsertByLevel(ctx context.Context, pkg *model.ServicePackage) error {
	return m.Called(ctx, pkg).Error(0)
}

type SubscriptionRepository struct {
	mock.Mock
}

func (m *SubscriptionRepository) Create(ctx context.Context, sub *model.PatientSubscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *SubscriptionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientSubscription, error) {
	args := m.Called(ctx, patientID)
	subs, _ := args.Get(0).([]*model.PatientSubscription)
	return subs, args.Error(1)
}

func (m *SubscriptionRepository) ExpireEndedBefore(ctx context.Context, day model.Date, now time.Time) (int64, error) {
	args := m.Called(ctx, day, now)
	return args.Get(0).(int64), args.Error(1)
}

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id, recorderID)
	appointment, _ := args.Get(0).(*model.Appointment)
	return appointment, args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *AppointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, int, error) {
	args := m.Called(ctx, filter)
	appointments, _ := args.Get(0).([]*model.Appointment)
	return appointments, args.Int(1), args.Error(2)
}

func (m *AppointmentRepository) ListForDay(ctx context.Context, recorderID *uuid.UUID, day model.Date, statuses []string) ([]*model.Appointment, error) {
	args := m.Called(ctx, recorderID, day, statuses)
	appointments, _ := args.Get(0).([]*model.Appointment)
	return appointments, args.Error(1)
}

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *PaymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *PaymentRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, appointmentID)
	payment, _ := args.Get(0).(*model.Payment)
	return payment, args.Error(1)
}

type ServiceTypeRepository struct {
	mock.Mock
}

func (m *ServiceTypeRepository) ListActive(ctx context.Context) ([]*model.ServiceType, error) {
	args := m.Called(ctx)
	types, _ := args.Get(0).([]*model.ServiceType)
	return types, args.Error(1)
}

func (m *ServiceTypeRepository) Get(ctx context.Context, id uuid.UUID) (*model.ServiceType, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(*model.ServiceType)
	return st, args.Error(1)
}

func (m *ServiceTypeRepository) UpsertByName(ctx context.Context, st *model.ServiceType) error {
	return m.Called(ctx, st).Error(0)
}

type HealthRecordRepository struct {
	mock.Mock
}

func (m *HealthRecordRepository) Create(ctx context.Context, record *model.HealthRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *HealthRecordRepository) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.HealthRecord, error) {
	args := m.Called(ctx, id, recorderID)
	record, _ := args.Get(0).(*model.HealthRecord)
	return record, args.Error(1)
}

func (m *HealthRecordRepository) List(ctx context.Context, filter model.HealthRecordFilter) ([]*model.HealthRecord, int, error) {
	args := m.Called(ctx, filter)
	records, _ := args.Get(0).([]*model.HealthRecord)
	return records, args.Int(1), args.Error(2)
}

type MedicalOrderRepository struct {
	mock.Mock
}

func (m *MedicalOrderRepository) Create(ctx context.Context, order *model.MedicalOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MedicalOrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalOrder, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*model.MedicalOrder)
	return order, args.Error(1)
}

func (m *MedicalOrderRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalOrder, error) {
	args := m.Called(ctx, patientID)
	orders, _ := args.Get(0).([]*model.MedicalOrder)
	return orders, args.Error(1)
}

func (m *MedicalOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

type HospitalRepository struct {
	mock.Mock
}

func (m *HospitalRepository) ListHospitals(ctx context.Context, filter model.HospitalFilter) ([]*model.PartnerHospital, error) {
	args := m.Called(ctx, filter)
	hospitals, _ := args.Get(0).([]*model.PartnerHospital)
	return hospitals, args.Error(1)
}

func (m *HospitalRepository) GetHospital(ctx context.Context, id uuid.UUID) (*model.PartnerHospital, error) {
	args := m.Called(ctx, id)
	hospital, _ := args.Get(0).(*model.PartnerHospital)
	return hospital, args.Error(1)
}

func (m *HospitalRepository) ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.HospitalDepartment, error) {
	args := m.Called(ctx, hospitalID)
	departments, _ := args.Get(0).([]*model.HospitalDepartment)
	return departments, args.Error(1)
}

func (m *HospitalRepository) GetDepartment(ctx context.Context, hospitalID, departmentID uuid.UUID) (*model.HospitalDepartment, error) {
	args := m.Called(ctx, hospitalID, departmentID)
	department, _ := args.Get(0).(*model.HospitalDepartment)
	return department, args.Error(1)
}

func (m *HospitalRepository) ListDoctors(ctx context.Context, hospitalID, departmentID uuid.UUID) ([]*model.HospitalDoctor, error) {
	args := m.Called(ctx, hospitalID, departmentID)
	doctors, _ := args.Get(0).([]*model.HospitalDoctor)
	return doctors, args.Error(1)
}

func (m *HospitalRepository) GetDoctor(ctx context.Context, id uuid.UUID) (*model.HospitalDoctor, error) {
	args := m.Called(ctx, id)
	doctor, _ := args.Get(0).(*model.HospitalDoctor)
	return doctor, args.Error(1)
}

func (m *HospitalRepository) CreateAppointment(ctx context.Context, appt *model.HospitalAppointment) error {
	return m.Called(ctx, appt).Error(0)
}

func (m *HospitalRepository) GetAppointment(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.HospitalAppointmentView, error) {
	args := m.Called(ctx, id, recorderID)
	view, _ := args.Get(0).(*model.HospitalAppointmentView)
	return view, args.Error(1)
}

func (m *HospitalRepository) ListAppointments(ctx context.Context, filter model.HospitalAppointmentFilter) ([]*model.HospitalAppointmentView, int, error) {
	args := m.Called(ctx, filter)
	views, _ := args.Get(0).([]*model.HospitalAppointmentView)
	return views, args.Int(1), args.Error(2)
}

func (m *HospitalRepository) UpdateAppointment(ctx context.Context, appt *model.HospitalAppointment) error {
	return m.Called(ctx, appt).Error(0)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*model.OutboxEvent)
	return events, args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *OutboxRepository) MarkRetry(ctx context.Context, id uuid.UUID, message string, retries int) error {
	return m.Called(ctx, id, message, retries).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string, retries int) error {
	return m.Called(ctx, id, message, retries).Error(0)
}

// Emitter records emitted events.
type Emitter struct {
	mock.Mock
}

func (m *Emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return m.Called(ctx, eventType, payload).Error(0)
}

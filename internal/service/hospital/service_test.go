package hospital

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/mocks"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/pagination"
)

type fixture struct {
	svc       *Service
	hospitals *mocks.HospitalRepository
	patients  *mocks.PatientRepository
	events    *mocks.Emitter
}

func newFixture() *fixture {
	f := &fixture{
		hospitals: &mocks.HospitalRepository{},
		patients:  &mocks.PatientRepository{},
		events:    &mocks.Emitter{},
	}
	f.svc = NewService(mocks.Transactor{}, f.hospitals, f.patients, f.events)
	f.svc.now = func() time.Time { return time.Date(2026, 5, 10, 10, 0, 0, 0, time.UTC) }
	return f
}

func referral(patientID, hospitalID, departmentID uuid.UUID) *model.CreateHospitalAppointmentRequest {
	return &model.CreateHospitalAppointmentRequest{
		PatientID:       patientID,
		HospitalID:      hospitalID,
		DepartmentID:    departmentID,
		AppointmentDate: "2026-05-20",
		AppointmentTime: "14:00",
	}
}

func TestCreateAppointmentPending(t *testing.T) {
	f := newFixture()
	recorderID, patientID, hospitalID, departmentID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	f.patients.On("GetByID", mock.Anything, patientID, &recorderID).Return(&model.Patient{}, nil)
	f.hospitals.On("GetDepartment", mock.Anything, hospitalID, departmentID).Return(&model.HospitalDepartment{}, nil)

	var created *model.HospitalAppointment
	f.hospitals.On("CreateAppointment", mock.Anything, mock.AnythingOfType("*model.HospitalAppointment")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.HospitalAppointment) }).
		Return(nil)
	f.events.On("Emit", mock.Anything, model.EventHospitalAppointmentCreated, mock.Anything).Return(nil)
	f.hospitals.On("GetAppointment", mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return(&model.HospitalAppointmentView{HospitalName: "市第一人民医院"}, nil)

	view, err := f.svc.CreateAppointment(context.Background(), referral(patientID, hospitalID, departmentID), recorderID, &recorderID)
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, model.HospitalAppointmentPending, created.Status)
	assert.Equal(t, recorderID, created.RecorderID)
	assert.Equal(t, "14:00", created.AppointmentTime.String())
	assert.Equal(t, "市第一人民医院", view.HospitalName)
	f.events.AssertExpectations(t)
}

func TestCreateAppointmentDepartmentOfOtherHospital(t *testing.T) {
	f := newFixture()
	patientID, hospitalID, departmentID := uuid.New(), uuid.New(), uuid.New()
	f.patients.On("GetByID", mock.Anything, patientID, (*uuid.UUID)(nil)).Return(&model.Patient{}, nil)
	f.hospitals.On("GetDepartment", mock.Anything, hospitalID, departmentID).Return(nil, apperrors.NewNotFound("department", nil))

	_, err := f.svc.CreateAppointment(context.Background(), referral(patientID, hospitalID, departmentID), uuid.New(), nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	f.hospitals.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
}

func TestCreateAppointmentDoctorOutsideDepartment(t *testing.T) {
	f := newFixture()
	patientID, hospitalID, departmentID, doctorID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	f.patients.On("GetByID", mock.Anything, patientID, (*uuid.UUID)(nil)).Return(&model.Patient{}, nil)
	f.hospitals.On("GetDepartment", mock.Anything, hospitalID, departmentID).Return(&model.HospitalDepartment{}, nil)
	f.hospitals.On("GetDoctor", mock.Anything, doctorID).
		Return(&model.HospitalDoctor{ID: doctorID, HospitalID: hospitalID, DepartmentID: uuid.New()}, nil)

	req := referral(patientID, hospitalID, departmentID)
	req.DoctorID = &doctorID
	_, err := f.svc.CreateAppointment(context.Background(), req, uuid.New(), nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateAppointmentBadTime(t *testing.T) {
	f := newFixture()
	req := referral(uuid.New(), uuid.New(), uuid.New())
	req.AppointmentTime = "2pm"

	_, err := f.svc.CreateAppointment(context.Background(), req, uuid.New(), nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestDepartmentsOfUnknownHospital(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.hospitals.On("GetHospital", mock.Anything, id).Return(nil, apperrors.NewNotFound("hospital", nil))

	_, err := f.svc.Departments(context.Background(), id)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateAppointmentPartial(t *testing.T) {
	f := newFixture()
	recorderID := uuid.New()
	id := uuid.New()
	number := "A-031"
	notes := "血压偏高"
	existing := &model.HospitalAppointmentView{HospitalAppointment: model.HospitalAppointment{
		Status: model.HospitalAppointmentPending, Notes: &notes,
	}}
	existing.ID = id
	f.hospitals.On("GetAppointment", mock.Anything, id, &recorderID).Return(existing, nil)
	f.hospitals.On("UpdateAppointment", mock.Anything, mock.AnythingOfType("*model.HospitalAppointment")).Return(nil)

	status := model.HospitalAppointmentConfirmed
	view, err := f.svc.UpdateAppointment(context.Background(), id, &model.UpdateHospitalAppointmentRequest{
		Status: &status, AppointmentNumber: &number,
	}, &recorderID)
	require.NoError(t, err)

	assert.Equal(t, model.HospitalAppointmentConfirmed, view.Status)
	assert.Equal(t, "A-031", *view.AppointmentNumber)
	assert.Equal(t, "血压偏高", *view.Notes)
	assert.Nil(t, view.Fee)
}

func TestListAppointmentsScoped(t *testing.T) {
	f := newFixture()
	recorderID := uuid.New()
	f.hospitals.On("ListAppointments", mock.Anything, model.HospitalAppointmentFilter{
		RecorderID: &recorderID, Status: "pending", Limit: 20, Offset: 0,
	}).Return([]*model.HospitalAppointmentView{{}}, 1, nil)

	page, err := f.svc.ListAppointments(context.Background(), &recorderID, "pending", pagination.New(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Appointments, 1)
}

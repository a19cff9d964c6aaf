package family

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/mocks"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/pagination"
)

type fixture struct {
	families *mocks.FamilyRepository
	patients *mocks.PatientRepository
	packages *mocks.ServicePackageRepository
	subs     *mocks.SubscriptionRepository
	events   *mocks.Emitter
	metrics  *metrics.Metrics
	svc      *Service
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		families: new(mocks.FamilyRepository),
		patients: new(mocks.PatientRepository),
		packages: new(mocks.ServicePackageRepository),
		subs:     new(mocks.SubscriptionRepository),
		events:   new(mocks.Emitter),
		metrics:  metrics.NewMetrics("test", prometheus.NewRegistry()),
		now:      time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(mocks.Transactor{}, Repositories{
		Families:      f.families,
		Patients:      f.patients,
		Packages:      f.packages,
		Subscriptions: f.subs,
	}, f.events, f.metrics)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestCreateFamilyMaterializesHead(t *testing.T) {
	f := newFixture()
	recorderID := uuid.New()

	f.families.On("Create", mock.Anything, mock.AnythingOfType("*model.Family")).Return(nil)
	f.patients.On("Create", mock.Anything, mock.AnythingOfType("*model.Patient")).Return(nil)
	f.packages.On("GetByName", mock.Anything, model.DefaultPackageType).
		Return(nil, apperrors.NewNotFound("service package", nil))
	f.packages.On("Create", mock.Anything, mock.MatchedBy(func(p *model.ServicePackage) bool {
		return p.Name == model.DefaultPackageType && p.DurationDays == 30 && p.ServiceFrequency == 4 && p.Price == 0
	})).Return(nil)
	f.subs.On("Create", mock.Anything, mock.MatchedBy(func(s *model.PatientSubscription) bool {
		return *s.RecorderID == recorderID &&
			s.StartDate.String() == "2026-05-10" &&
			s.EndDate.String() == "2026-06-09" &&
			s.Status == model.SubscriptionStatusActive &&
			s.PaymentStatus == model.SubscriptionUnpaid
	})).Return(nil)
	f.events.On("Emit", mock.Anything, model.EventFamilyCreated, mock.Anything).Return(nil)

	family, err := f.svc.Create(context.Background(), &model.CreateFamilyRequest{
		HouseholdHead: "王大爷",
		Address:       "幸福路1号",
		Phone:         "13800000000",
		Head:          &model.HeadInput{Age: 65, Gender: "男"},
	}, &recorderID)
	require.NoError(t, err)

	assert.Equal(t, 1, family.TotalMembers)
	head := family.Members[0]
	assert.True(t, head.IsHead())
	assert.Equal(t, "王大爷", head.Name)
	assert.Equal(t, 65, head.Age)
	assert.Equal(t, "13800000000", *head.Phone)
	assert.Equal(t, model.DefaultPaymentStatus, head.PaymentStatus)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FamiliesCreated))

	f.subs.AssertNumberOfCalls(t, "Create", 1)
	f.events.AssertExpectations(t)
}

func TestCreateFamilyCountsSuppliedMembers(t *testing.T) {
	f := newFixture()
	existing := &model.ServicePackage{ID: uuid.New(), Name: "高级套餐", DurationDays: 90}

	f.families.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.patients.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.packages.On("GetByName", mock.Anything, "高级套餐").Return(existing, nil)
	f.subs.On("Create", mock.Anything, mock.MatchedBy(func(s *model.PatientSubscription) bool {
		return s.PackageID == existing.ID && s.RecorderID == nil && s.EndDate.String() == "2026-08-08"
	})).Return(nil)
	f.events.On("Emit", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	family, err := f.svc.Create(context.Background(), &model.CreateFamilyRequest{
		HouseholdHead: "李四",
		Address:       "和平街2号",
		Phone:         "13900000000",
		Head:          &model.HeadInput{Age: 70, PackageType: "高级套餐"},
		Members: []model.MemberInput{
			{Name: "张阿姨", Age: 68, Gender: "女", Relationship: "spouse"},
			{Name: "李小", Age: 30, Gender: "男", Relationship: "son", Conditions: "高血压, 糖尿病"},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, family.TotalMembers)
	f.patients.AssertNumberOfCalls(t, "Create", 3)
	f.packages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateFamilyValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), &model.CreateFamilyRequest{Address: "x", Phone: "1"}, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = f.svc.Create(context.Background(), &model.CreateFamilyRequest{
		HouseholdHead: "a", Address: "b", Phone: "c",
		Members: []model.MemberInput{{Name: "d", Gender: "男", Relationship: model.RelationshipHead}},
	}, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	f.families.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateFamilyDatabaseFailure(t *testing.T) {
	f := newFixture()
	f.families.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.svc.Create(context.Background(), &model.CreateFamilyRequest{
		HouseholdHead: "a", Address: "b", Phone: "c",
	}, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDatabase))
}

func TestDeleteLastMemberRejected(t *testing.T) {
	f := newFixture()
	familyID, memberID := uuid.New(), uuid.New()

	f.patients.On("Get", mock.Anything, memberID, familyID, (*uuid.UUID)(nil)).
		Return(&model.Patient{Base: model.Base{ID: memberID}, FamilyID: familyID, Relationship: model.RelationshipHead}, nil)
	f.patients.On("CountByFamily", mock.Anything, familyID).Return(1, nil)

	err := f.svc.DeleteMember(context.Background(), familyID, memberID, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
	assert.Contains(t, err.Error(), "last member")
	f.patients.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteHeadRejected(t *testing.T) {
	f := newFixture()
	familyID, headID := uuid.New(), uuid.New()

	f.patients.On("Get", mock.Anything, headID, familyID, (*uuid.UUID)(nil)).
		Return(&model.Patient{Base: model.Base{ID: headID}, FamilyID: familyID, Relationship: model.RelationshipHead}, nil)
	f.patients.On("CountByFamily", mock.Anything, familyID).Return(2, nil)

	err := f.svc.DeleteMember(context.Background(), familyID, headID, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
	assert.Contains(t, err.Error(), "household head")
}

func TestDeleteMember(t *testing.T) {
	f := newFixture()
	familyID, memberID := uuid.New(), uuid.New()
	recorderID := uuid.New()

	f.patients.On("Get", mock.Anything, memberID, familyID, &recorderID).
		Return(&model.Patient{Base: model.Base{ID: memberID}, FamilyID: familyID, Relationship: "son"}, nil)
	f.patients.On("CountByFamily", mock.Anything, familyID).Return(2, nil)
	f.patients.On("Delete", mock.Anything, memberID).Return(nil)
	f.families.On("Touch", mock.Anything, familyID, f.now).Return(nil)

	require.NoError(t, f.svc.DeleteMember(context.Background(), familyID, memberID, &recorderID))
	f.patients.AssertExpectations(t)
	f.families.AssertExpectations(t)
}

func TestDeleteMemberOutOfScope(t *testing.T) {
	f := newFixture()
	familyID, memberID, recorderID := uuid.New(), uuid.New(), uuid.New()

	f.patients.On("Get", mock.Anything, memberID, familyID, &recorderID).
		Return(nil, apperrors.NewNotFound("family member", nil))

	err := f.svc.DeleteMember(context.Background(), familyID, memberID, &recorderID)
	assert.True(t, apperrors.IsNotFound(err))
	f.patients.AssertNotCalled(t, "CountByFamily", mock.Anything, mock.Anything)
}

func TestUpdateFamilyReplacesNonHeadMembers(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	family := &model.Family{Base: model.Base{ID: id}, HouseholdHead: "王", Phone: "111", Address: "旧址"}
	head := &model.Patient{Base: model.Base{ID: uuid.New()}, FamilyID: id, Name: "王", Relationship: model.RelationshipHead}

	newPhone := "222"
	members := []model.MemberInput{{Name: "孙女", Age: 10, Gender: "女", Relationship: "granddaughter"}}

	f.families.On("Get", mock.Anything, id, (*uuid.UUID)(nil)).Return(family, nil)
	f.families.On("Update", mock.Anything, family).Return(nil)
	f.patients.On("GetHead", mock.Anything, id).Return(head, nil)
	f.patients.On("Update", mock.Anything, head).Return(nil)
	f.patients.On("DeleteNonHead", mock.Anything, id).Return(nil)
	f.patients.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Patient) bool {
		return p.Name == "孙女" && p.FamilyID == id
	})).Return(nil)
	f.patients.On("ListByFamilies", mock.Anything, []uuid.UUID{id}).Return([]*model.Patient{head}, nil)

	updated, err := f.svc.Update(context.Background(), id, &model.UpdateFamilyRequest{
		Phone:   &newPhone,
		Members: &members,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "222", updated.Phone)
	assert.Equal(t, "222", *head.Phone)
	f.patients.AssertExpectations(t)
}

func TestUpdateFamilyWithoutMembersKeepsList(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	family := &model.Family{Base: model.Base{ID: id}, HouseholdHead: "王", Phone: "111"}
	address := "新址"

	f.families.On("Get", mock.Anything, id, (*uuid.UUID)(nil)).Return(family, nil)
	f.families.On("Update", mock.Anything, family).Return(nil)
	f.patients.On("ListByFamilies", mock.Anything, []uuid.UUID{id}).Return([]*model.Patient{}, nil)

	updated, err := f.svc.Update(context.Background(), id, &model.UpdateFamilyRequest{Address: &address}, nil)
	require.NoError(t, err)
	assert.Equal(t, "新址", updated.Address)
	f.patients.AssertNotCalled(t, "DeleteNonHead", mock.Anything, mock.Anything)
	f.patients.AssertNotCalled(t, "GetHead", mock.Anything, mock.Anything)
}

func TestListFamiliesPaging(t *testing.T) {
	f := newFixture()
	recorderID := uuid.New()
	a, b := uuid.New(), uuid.New()

	f.families.On("List", mock.Anything, model.FamilyFilter{
		RecorderID: &recorderID, Search: "幸福", Limit: 2, Offset: 2,
	}).Return([]*model.Family{{Base: model.Base{ID: a}}, {Base: model.Base{ID: b}}}, 5, nil)
	f.patients.On("ListByFamilies", mock.Anything, []uuid.UUID{a, b}).Return([]*model.Patient{
		{FamilyID: a, Relationship: model.RelationshipHead},
		{FamilyID: a, Relationship: "spouse"},
		{FamilyID: b, Relationship: model.RelationshipHead},
	}, nil)

	page, err := f.svc.List(context.Background(), &recorderID, pagination.New(2, 2), " 幸福 ")
	require.NoError(t, err)

	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Families[0].TotalMembers)
	assert.Equal(t, 1, page.Families[1].TotalMembers)
}

func TestUpdateHeadMemberSyncsHeader(t *testing.T) {
	f := newFixture()
	familyID := uuid.New()
	family := &model.Family{Base: model.Base{ID: familyID}, HouseholdHead: "王", Phone: "111"}
	head := &model.Patient{Base: model.Base{ID: uuid.New()}, FamilyID: familyID, Name: "王", Relationship: model.RelationshipHead}
	name := "王建国"

	f.families.On("Get", mock.Anything, familyID, (*uuid.UUID)(nil)).Return(family, nil)
	f.patients.On("Get", mock.Anything, head.ID, familyID, (*uuid.UUID)(nil)).Return(head, nil)
	f.patients.On("Update", mock.Anything, head).Return(nil)
	f.families.On("Update", mock.Anything, family).Return(nil)

	_, err := f.svc.UpdateMember(context.Background(), familyID, head.ID, &model.UpdateMemberRequest{Name: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "王建国", family.HouseholdHead)

	spouse := "spouse"
	_, err = f.svc.UpdateMember(context.Background(), familyID, head.ID, &model.UpdateMemberRequest{Relationship: &spouse}, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestPatientWithSubscriptions(t *testing.T) {
	f := newFixture()
	recorderID, patientID := uuid.New(), uuid.New()

	f.patients.On("GetByID", mock.Anything, patientID, &recorderID).
		Return(&model.Patient{Base: model.Base{ID: patientID}, Name: "王大爷", Relationship: model.RelationshipHead}, nil)
	f.subs.On("ListByPatient", mock.Anything, patientID).Return(nil, nil)

	detail, err := f.svc.Patient(context.Background(), patientID, &recorderID)
	require.NoError(t, err)
	assert.Equal(t, "王大爷", detail.Name)
	assert.NotNil(t, detail.Subscriptions)
	assert.Empty(t, detail.Subscriptions)
}

func TestPatientOutOfScope(t *testing.T) {
	f := newFixture()
	recorderID, patientID := uuid.New(), uuid.New()

	f.patients.On("GetByID", mock.Anything, patientID, &recorderID).
		Return(nil, apperrors.NewNotFound("patient", nil))

	_, err := f.svc.Patient(context.Background(), patientID, &recorderID)
	assert.True(t, apperrors.IsNotFound(err))
	f.subs.AssertNotCalled(t, "ListByPatient", mock.Anything, mock.Anything)
}

func TestDeleteFamilyOutOfScope(t *testing.T) {
	f := newFixture()
	id, recorderID := uuid.New(), uuid.New()
	f.families.On("Get", mock.Anything, id, &recorderID).Return(nil, apperrors.NewNotFound("family", nil))

	err := f.svc.Delete(context.Background(), id, &recorderID)
	assert.True(t, apperrors.IsNotFound(err))
	f.families.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteFamily(t *testing.T) {
	f := newFixture()
	id, recorderID := uuid.New(), uuid.New()

	f.families.On("Get", mock.Anything, id, &recorderID).Return(&model.Family{Base: model.Base{ID: id}}, nil)
	f.families.On("Delete", mock.Anything, id).Return(nil)
	f.events.On("Emit", mock.Anything, model.EventFamilyDeleted, familyEvent{FamilyID: id, RecorderID: &recorderID}).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), id, &recorderID))
	f.families.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

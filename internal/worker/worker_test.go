package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/homecare/visit-api/internal/email"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/service/mocks"
	"github.com/homecare/visit-api/pkg/logger"
	"github.com/homecare/visit-api/pkg/metrics"
)

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendCustom(ctx context.Context, to, subject, content string) error {
	return m.Called(ctx, to, subject, content).Error(0)
}

func (m *mockMailer) SendCertificateNotice(ctx context.Context, cert *model.ExpiringCertificate, daysLeft int) error {
	return m.Called(ctx, cert, daysLeft).Error(0)
}

func TestSubscriptionSweep(t *testing.T) {
	repo := new(mocks.SubscriptionRepository)
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w := NewSubscriptionExpiryWorker(repo, time.Hour, logger.Nop(), m)
	w.now = func() time.Time { return fixedNow }

	repo.On("ExpireEndedBefore", mock.Anything, model.NewDate(fixedNow), fixedNow).Return(int64(3), nil).Once()

	n, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SubscriptionsExpired))

	repo.On("ExpireEndedBefore", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("conn reset"))
	_, err = w.Sweep(context.Background())
	assert.Error(t, err)
}

func TestCertificateNotify(t *testing.T) {
	users := new(mocks.UserRepository)
	mailer := new(mockMailer)
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w := NewCertificateNoticeWorker(users, mailer, 30, 24*time.Hour, logger.Nop(), m)
	w.now = func() time.Time { return fixedNow }

	today := model.NewDate(fixedNow)
	soon := &model.ExpiringCertificate{EmployeeID: "R1", CertExpiryDate: today.AddDays(10)}
	noEmail := &model.ExpiringCertificate{EmployeeID: "R2", CertExpiryDate: today.AddDays(20)}
	users.On("ListExpiringCertificates", mock.Anything, today, today.AddDays(30)).
		Return([]*model.ExpiringCertificate{soon, noEmail}, nil)
	mailer.On("SendCertificateNotice", mock.Anything, soon, 10).Return(nil)
	mailer.On("SendCertificateNotice", mock.Anything, noEmail, 20).Return(errors.New("no email address"))

	sent, err := w.Notify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CertificateNotices.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CertificateNotices.WithLabelValues("failed")))
	mailer.AssertExpectations(t)
}

func TestCertificateNotifySkipsWhenMailDisabled(t *testing.T) {
	users := new(mocks.UserRepository)
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	w := NewCertificateNoticeWorker(users, email.NewService(email.Config{}), 30, time.Hour, logger.Nop(), m)
	w.now = func() time.Time { return fixedNow }

	addr := "a@b.c"
	users.On("ListExpiringCertificates", mock.Anything, mock.Anything, mock.Anything).
		Return([]*model.ExpiringCertificate{{EmployeeID: "R1", Email: &addr, CertExpiryDate: model.NewDate(fixedNow).AddDays(5)}}, nil)

	sent, err := w.Notify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CertificateNotices.WithLabelValues("skipped")))
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homecare/visit-api/internal/email"
	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/worker"
)

// CertificateNoticeWorker mails recorders whose practising certificate
// expires within the window.
type CertificateNoticeWorker struct {
	users      repository.UserRepository
	mailer     email.Service
	windowDays int
	interval   time.Duration
	logger     worker.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewCertificateNoticeWorker(
	users repository.UserRepository,
	mailer email.Service,
	windowDays int,
	interval time.Duration,
	logger worker.Logger,
	m *metrics.Metrics,
) *CertificateNoticeWorker {
	return &CertificateNoticeWorker{
		users:      users,
		mailer:     mailer,
		windowDays: windowDays,
		interval:   interval,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

func (w *CertificateNoticeWorker) Start(ctx context.Context) {
	run(ctx, w.interval, func(ctx context.Context) {
		if _, err := w.Notify(ctx); err != nil {
			w.logger.Error(err, "failed to send certificate notices")
		}
	})
}

// Notify mails every recorder in the window and returns how many mails
// went out. A failed mail is counted and logged, not returned.
func (w *CertificateNoticeWorker) Notify(ctx context.Context) (int, error) {
	today := model.NewDate(w.now())
	certs, err := w.users.ListExpiringCertificates(ctx, today, today.AddDays(w.windowDays))
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring certificates: %w", err)
	}

	sent := 0
	for _, cert := range certs {
		daysLeft := int(cert.CertExpiryDate.Sub(today.Time).Hours() / 24)

		err := w.mailer.SendCertificateNotice(ctx, cert, daysLeft)
		switch {
		case err == nil:
			sent++
			w.metrics.CertificateNotices.WithLabelValues("sent").Inc()
		case errors.Is(err, email.ErrDisabled):
			w.metrics.CertificateNotices.WithLabelValues("skipped").Inc()
		default:
			w.metrics.CertificateNotices.WithLabelValues("failed").Inc()
			w.logger.Error(err, "failed to send certificate notice",
				"employee_id", cert.EmployeeID, "days_left", daysLeft)
		}
	}
	return sent, nil
}

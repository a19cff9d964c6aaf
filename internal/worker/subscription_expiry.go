package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/worker"
)

// SubscriptionExpiryWorker moves active subscriptions past their end
// date to expired.
type SubscriptionExpiryWorker struct {
	repo     repository.SubscriptionRepository
	interval time.Duration
	logger   worker.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewSubscriptionExpiryWorker(repo repository.SubscriptionRepository, interval time.Duration, logger worker.Logger, m *metrics.Metrics) *SubscriptionExpiryWorker {
	return &SubscriptionExpiryWorker{
		repo:     repo,
		interval: interval,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

func (w *SubscriptionExpiryWorker) Start(ctx context.Context) {
	run(ctx, w.interval, func(ctx context.Context) {
		if _, err := w.Sweep(ctx); err != nil {
			w.logger.Error(err, "failed to expire subscriptions")
		}
	})
}

// Sweep expires subscriptions that ended before today.
func (w *SubscriptionExpiryWorker) Sweep(ctx context.Context) (int64, error) {
	now := w.now()
	n, err := w.repo.ExpireEndedBefore(ctx, model.NewDate(now), now)
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("expire_subscriptions", "error").Inc()
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	w.metrics.DatabaseOperations.WithLabelValues("expire_subscriptions", "success").Inc()
	w.metrics.SubscriptionsExpired.Add(float64(n))

	if n > 0 {
		w.logger.Info("expired subscriptions", "count", n)
	}
	return n, nil
}

// run calls fn once immediately and then on every tick until ctx ends.
func run(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/pkg/messaging"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/repository"
)

// Logger is satisfied by pkg/logger and its zap adapter.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(err error, msg string, fields ...interface{})
}

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// RetryAttempts bounds publish attempts within one poll.
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxDeliveries is the number of failed polls after which an event
	// is parked as FAILED.
	MaxDeliveries int
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("BatchSize must be greater than 0")
	case c.PollInterval <= 0:
		return fmt.Errorf("PollInterval must be greater than 0")
	case c.RetryAttempts <= 0:
		return fmt.Errorf("RetryAttempts must be greater than 0")
	case c.RetryDelay <= 0:
		return fmt.Errorf("RetryDelay must be greater than 0")
	case c.MaxDeliveries <= 0:
		return fmt.Errorf("MaxDeliveries must be greater than 0")
	}
	return nil
}

// OutboxProcessor relays pending outbox events to the broker. Each poll
// runs in one transaction so that concurrent workers skip locked rows.
type OutboxProcessor struct {
	tx      repository.Transactor
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOutboxProcessor(
	tx repository.Transactor,
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &OutboxProcessor{
		tx:      tx,
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor", "batch_size", p.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process events")
			}
		}
	}
}

// ProcessBatch relays one batch and returns once every event in it has
// been marked.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	return p.tx.WithinTx(ctx, func(ctx context.Context) error {
		events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize)
		if err != nil {
			p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
			return fmt.Errorf("failed to get pending events: %w", err)
		}
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

		for _, event := range events {
			if err := p.processEvent(ctx, event); err != nil {
				p.metrics.DatabaseOperations.WithLabelValues("mark_event", "error").Inc()
				return err
			}
		}
		return nil
	})
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	channel := messaging.Channel(event.EventType)
	attempt := 0
	publish := func() error {
		attempt++
		if attempt > 1 {
			p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
		}
		return p.broker.Publish(ctx, channel, event.Payload)
	}

	err := backoff.Retry(publish, p.backoff(ctx))
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		return p.repo.MarkProcessed(ctx, event.ID, p.now())
	}

	retries := event.RetryCount + 1
	if retries >= p.config.MaxDeliveries {
		p.metrics.OutboxEventsFailed.Inc()
		p.logger.Error(err, "outbox event failed permanently",
			"event_id", event.ID.String(),
			"event_type", event.EventType,
			"retries", retries)
		return p.repo.MarkFailed(ctx, event.ID, err.Error(), retries)
	}

	p.logger.Error(err, "failed to publish outbox event",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"retries", retries)
	return p.repo.MarkRetry(ctx, event.ID, err.Error(), retries)
}

func (p *OutboxProcessor) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.RetryDelay
	b.MaxInterval = 8 * p.config.RetryDelay
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.config.RetryAttempts-1)), ctx)
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
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
	"github.com/homecare/visit-api/pkg/logger"
	"github.com/homecare/visit-api/pkg/messaging"
	"github.com/homecare/visit-api/pkg/metrics"
)

type fakeBroker struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	published []string
}

func (b *fakeBroker) Publish(_ context.Context, channel string, _ []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= b.failFirst {
		return errors.New("connection refused")
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Close() error { return nil }

func newEvent(t *testing.T, eventType string, retries int) *model.OutboxEvent {
	t.Helper()
	e, err := model.NewOutboxEvent(eventType, map[string]string{"family_id": uuid.NewString()}, time.Now())
	require.NoError(t, err)
	require.True(t, json.Valid(e.Payload))
	e.RetryCount = retries
	return e
}

func newProcessor(t *testing.T, repo *mocks.OutboxRepository, broker messaging.Broker) (*OutboxProcessor, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	p, err := NewOutboxProcessor(mocks.Transactor{}, repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		MaxDeliveries: 3,
	}, logger.Nop(), m)
	require.NoError(t, err)
	return p, m
}

func TestProcessBatchPublishesToEventChannel(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	broker := &fakeBroker{failFirst: 1}
	p, m := newProcessor(t, repo, broker)

	event := newEvent(t, "family.created", 0)
	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	repo.On("MarkProcessed", mock.Anything, event.ID, mock.AnythingOfType("time.Time")).Return(nil)

	require.NoError(t, p.ProcessBatch(context.Background()))

	assert.Equal(t, []string{"homecare.family.created"}, broker.published)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues("family.created")))
	repo.AssertExpectations(t)
}

func TestProcessBatchKeepsEventPendingUntilMaxDeliveries(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	p, m := newProcessor(t, repo, &fakeBroker{failFirst: 100})

	fresh := newEvent(t, "appointment.created", 0)
	exhausted := newEvent(t, "appointment.completed", 2)
	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return([]*model.OutboxEvent{fresh, exhausted}, nil)
	repo.On("MarkRetry", mock.Anything, fresh.ID, "connection refused", 1).Return(nil)
	repo.On("MarkFailed", mock.Anything, exhausted.ID, "connection refused", 3).Return(nil)

	require.NoError(t, p.ProcessBatch(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsFailed))
	repo.AssertExpectations(t)
}

func TestProcessBatchReportsLockFailure(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	p, _ := newProcessor(t, repo, &fakeBroker{})

	repo.On("GetPendingEventsWithLock", mock.Anything, 10).Return(nil, errors.New("deadlock"))

	assert.Error(t, p.ProcessBatch(context.Background()))
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(mocks.Transactor{}, new(mocks.OutboxRepository), &fakeBroker{},
		OutboxProcessorConfig{BatchSize: 1}, logger.Nop(), nil)
	assert.Error(t, err)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxRetries           *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses prometheus.Counter

	// Domain metrics
	FamiliesCreated       prometheus.Counter
	AppointmentsCompleted prometheus.Counter
	PaymentsReconciled    *prometheus.CounterVec
	SubscriptionsExpired  prometheus.Counter
	CertificateNotices    *prometheus.CounterVec
}

// NewMetrics registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		OutboxEventsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully published outbox events",
		}),
		OutboxEventsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of outbox events that exhausted their retries",
		}),
		OutboxProcessingLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing one outbox batch",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_retry_attempts_total",
			Help:      "Total number of publish retries",
		}, []string{"event_type"}),

		DatabaseOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations issued by workers",
		}, []string{"operation", "status"}),

		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by level",
		}, []string{"level"}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses",
		}),

		FamiliesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "families_created_total",
			Help:      "Families registered",
		}),
		AppointmentsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_completed_total",
			Help:      "Appointments marked completed",
		}),
		PaymentsReconciled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_reconciled_total",
			Help:      "Appointment payments written, by outcome",
		}, []string{"outcome"}),
		SubscriptionsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_expired_total",
			Help:      "Subscriptions moved to expired by the sweeper",
		}),
		CertificateNotices: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificate_notices_total",
			Help:      "Recorder certificate expiry notices by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) CacheHit(level string) {
	m.CacheHits.WithLabelValues(level).Inc()
}

func (m *Metrics) CacheMiss() {
	m.CacheMisses.Inc()
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// WorkerConfig is read from WORKER_* environment variables, e.g.
// WORKER_POLL_INTERVAL=5s.
type WorkerConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL" required:"true"`

	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"50"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"5"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
	MaxDeliveries int           `envconfig:"MAX_DELIVERIES" default:"10"`

	ExpirySweepInterval time.Duration `envconfig:"EXPIRY_SWEEP_INTERVAL" default:"1h"`
	CertificateInterval time.Duration `envconfig:"CERTIFICATE_INTERVAL" default:"24h"`
	CertificateWindow   int           `envconfig:"CERTIFICATE_WINDOW_DAYS" default:"30"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	MetricsAddr   string `envconfig:"METRICS_ADDR" default:":9091"`
	MetricsPrefix string `envconfig:"METRICS_PREFIX" default:"homecare_worker"`
}

func LoadWorker() (*WorkerConfig, error) {
	var cfg WorkerConfig
	if err := envconfig.Process("worker", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load worker config: %w", err)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid WORKER_BATCH_SIZE %d", cfg.BatchSize)
	}
	return &cfg, nil
}

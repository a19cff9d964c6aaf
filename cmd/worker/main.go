package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/homecare/visit-api/internal/config"
	"github.com/homecare/visit-api/internal/email"
	"github.com/homecare/visit-api/internal/repository/postgres"
	jobs "github.com/homecare/visit-api/internal/worker"
	"github.com/homecare/visit-api/pkg/logger"
	"github.com/homecare/visit-api/pkg/messaging/redis"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/worker"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	log := logger.NewZap(zl.With(zap.String("service", "visit-worker")))

	cfg, err := config.LoadWorker()
	if err != nil {
		zl.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL})
	if err != nil {
		zl.Fatal("failed to connect to Redis", zap.Error(err))
	}
	// The broker logs breaker transitions with zerolog; route them to stderr.
	broker := redis.NewBroker(rdb, zerolog.New(os.Stderr).With().Timestamp().Str("component", "broker").Logger())
	defer broker.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(cfg.MetricsPrefix, registry)

	processor, err := worker.NewOutboxProcessor(
		postgres.NewTransactor(db),
		postgres.NewOutboxRepository(db),
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.BatchSize,
			PollInterval:  cfg.PollInterval,
			RetryAttempts: cfg.RetryAttempts,
			RetryDelay:    cfg.RetryDelay,
			MaxDeliveries: cfg.MaxDeliveries,
		},
		log,
		m,
	)
	if err != nil {
		zl.Fatal("invalid outbox processor config", zap.Error(err))
	}

	expiry := jobs.NewSubscriptionExpiryWorker(
		postgres.NewSubscriptionRepository(db), cfg.ExpirySweepInterval, log, m)
	notices := jobs.NewCertificateNoticeWorker(
		postgres.NewUserRepository(db),
		email.NewService(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}),
		cfg.CertificateWindow,
		cfg.CertificateInterval,
		log,
		m,
	)

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: opsMux(db, rdb, broker, registry)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("ops server failed", zap.Error(err))
			stop()
		}
	}()

	var wg sync.WaitGroup
	for _, start := range []func(context.Context){processor.Start, expiry.Start, notices.Start} {
		wg.Add(1)
		go func(start func(context.Context)) {
			defer wg.Done()
			start(ctx)
		}(start)
	}

	zl.Info("worker started",
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("batch_size", cfg.BatchSize),
		zap.String("ops_addr", cfg.MetricsAddr))

	<-ctx.Done()
	zl.Info("shutting down...")

	wg.Wait()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("ops server forced to shutdown", zap.Error(err))
	}
}

func opsMux(db *sqlx.DB, rdb *goredis.Client, broker *redis.Broker, registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("X-Broker-State", broker.BreakerState())
		if db.PingContext(ctx) != nil || rdb.Ping(ctx).Err() != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

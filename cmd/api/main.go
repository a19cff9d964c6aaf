package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/homecare/visit-api/internal/config"
	appointmentHandler "github.com/homecare/visit-api/internal/handler/appointment"
	authHandler "github.com/homecare/visit-api/internal/handler/auth"
	familyHandler "github.com/homecare/visit-api/internal/handler/family"
	"github.com/homecare/visit-api/internal/handler/health"
	healthRecordHandler "github.com/homecare/visit-api/internal/handler/healthrecord"
	hospitalHandler "github.com/homecare/visit-api/internal/handler/hospital"
	patientHandler "github.com/homecare/visit-api/internal/handler/patient"
	promhandler "github.com/homecare/visit-api/internal/handler/prometheus"
	packageHandler "github.com/homecare/visit-api/internal/handler/servicepackage"
	userHandler "github.com/homecare/visit-api/internal/handler/user"
	"github.com/homecare/visit-api/internal/middleware"
	"github.com/homecare/visit-api/internal/repository/postgres"
	"github.com/homecare/visit-api/internal/router"
	appointmentService "github.com/homecare/visit-api/internal/service/appointment"
	authService "github.com/homecare/visit-api/internal/service/auth"
	eventService "github.com/homecare/visit-api/internal/service/event"
	familyService "github.com/homecare/visit-api/internal/service/family"
	healthRecordService "github.com/homecare/visit-api/internal/service/healthrecord"
	hospitalService "github.com/homecare/visit-api/internal/service/hospital"
	packageService "github.com/homecare/visit-api/internal/service/servicepackage"
	userService "github.com/homecare/visit-api/internal/service/user"
	"github.com/homecare/visit-api/pkg/auth"
	"github.com/homecare/visit-api/pkg/cache"
	"github.com/homecare/visit-api/pkg/logger"
	"github.com/homecare/visit-api/pkg/messaging/redis"
	"github.com/homecare/visit-api/pkg/metrics"
	"github.com/homecare/visit-api/pkg/security"
	"github.com/homecare/visit-api/pkg/storage"
	"github.com/homecare/visit-api/pkg/tracing"
)

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Service: "visit-api"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:  cfg.Tracing.ServiceName,
		Environment:  cfg.Tracing.Environment,
		Endpoint:     cfg.Tracing.Endpoint,
		Insecure:     cfg.Tracing.Insecure,
		SamplingRate: cfg.Tracing.SamplingRate,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	db, err := postgres.NewDB(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var rdb *goredis.Client
	if cfg.Redis.URL != "" {
		rdb, err = redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
	} else {
		log.Warn().Msg("redis disabled, caching in process only")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(cfg.Metrics.Prefix, registry)

	refCache := cache.New(cache.Config{
		TTL:             cfg.Cache.TTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	}, rdb, appMetrics)

	store, err := storage.NewDiskStore(storage.Config{
		Dir:      cfg.Upload.Dir,
		BaseURL:  cfg.Upload.BaseURL,
		MaxBytes: cfg.Upload.MaxBytes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload storage")
	}

	// Repositories
	tx := postgres.NewTransactor(db)
	userRepo := postgres.NewUserRepository(db)
	familyRepo := postgres.NewFamilyRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	packageRepo := postgres.NewServicePackageRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	serviceTypeRepo := postgres.NewServiceTypeRepository(db)
	healthRecordRepo := postgres.NewHealthRecordRepository(db)
	orderRepo := postgres.NewMedicalOrderRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	events := eventService.NewEventService(outboxRepo)
	tokens := auth.NewTokenManager(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        "visit-api",
	})
	authSvc := authService.NewService(tx, userRepo, tokens, security.NewBcryptHasher(bcrypt.DefaultCost))
	familySvc := familyService.NewService(tx, familyService.Repositories{
		Families:      familyRepo,
		Patients:      patientRepo,
		Packages:      packageRepo,
		Subscriptions: subscriptionRepo,
	}, events, appMetrics)
	appointmentSvc := appointmentService.NewService(tx, appointmentService.Repositories{
		Appointments: appointmentRepo,
		Payments:     paymentRepo,
		Patients:     patientRepo,
		ServiceTypes: serviceTypeRepo,
	}, events, appointmentService.Options{
		Cache:    refCache,
		CacheTTL: cfg.Cache.TTL,
		Metrics:  appMetrics,
	})
	healthRecordSvc := healthRecordService.NewService(tx, healthRecordService.Repositories{
		Records:  healthRecordRepo,
		Orders:   orderRepo,
		Patients: patientRepo,
		Users:    userRepo,
	}, store, events)
	hospitalSvc := hospitalService.NewService(tx, hospitalRepo, patientRepo, events)
	packageSvc := packageService.NewService(tx, packageRepo, refCache, cfg.Cache.TTL)
	userSvc := userService.NewService(tx, userRepo, events)

	// HTTP
	if err := middleware.RegisterValidation(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}
	guards := middleware.NewAuthMiddleware(authSvc).Guards()

	r := router.NewRouter(
		health.NewHandlerFor(db, rdb),
		promhandler.New(cfg.Metrics.Prefix, registry),
		router.RouterConfig{
			Mode:        cfg.Server.Mode,
			ServiceName: cfg.Tracing.ServiceName,
			Tracing:     cfg.Tracing.Endpoint != "",
			RateLimit:   rate.Limit(cfg.RateLimit.RPS),
			RateBurst:   cfg.RateLimit.Burst,
			CORSConfig: middleware.CORSConfig{
				AllowOrigins:     cfg.CORS.AllowOrigins,
				AllowCredentials: true,
				MaxAge:           86400,
			},
			SizeLimit: middleware.SizeLimitConfig{
				MaxBodySize:   cfg.Server.MaxBodyBytes,
				MaxUploadSize: cfg.Upload.MaxBytes * 10,
				MaxHeaderSize: middleware.DefaultSizeLimitConfig().MaxHeaderSize,
			},
			Timeout:       cfg.Server.RequestTimeout,
			UploadDir:     cfg.Upload.Dir,
			UploadURLPath: cfg.Upload.BaseURL,
		},
		authHandler.NewHandler(authSvc, guards),
		userHandler.NewHandler(userSvc, guards),
		familyHandler.NewHandler(familySvc, guards),
		patientHandler.NewHandler(familySvc, guards),
		appointmentHandler.NewHandler(appointmentSvc, guards),
		healthRecordHandler.NewHandler(healthRecordSvc, guards),
		hospitalHandler.NewHandler(hospitalSvc, guards),
		packageHandler.NewHandler(packageSvc, guards),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", gin.Mode()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}

	log.Info().Dur("shutdown_timeout", cfg.Server.ShutdownTimeout).Msg("server exited properly")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"irdesk/internal/audit"
	"irdesk/internal/kyc/handler"
	"irdesk/internal/kyc/investors"
	"irdesk/internal/kyc/orchestrator"
	"irdesk/internal/kyc/provider"
	"irdesk/internal/kyc/reconciler"
	"irdesk/internal/kyc/status"
	"irdesk/internal/kyc/store"
	"irdesk/internal/platform/config"
	"irdesk/internal/platform/httpserver"
	"irdesk/internal/platform/logger"
	"irdesk/internal/platform/metrics"
	"irdesk/internal/platform/middleware"
	"irdesk/internal/platform/postgres"
	"irdesk/internal/platform/redis"
	httptransport "irdesk/internal/transport/http"
	"irdesk/pkg/platform/circuit"
)

const (
	requestTimeout  = 60 * time.Second
	pollTimeout     = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
	auditBuffer     = 1024
)

type investorStore interface {
	orchestrator.Store
	reconciler.Store
	investors.Store
}

type verificationProvider interface {
	orchestrator.Provider
	reconciler.Provider
}

// main wires the KYC engine, exposes the HTTP router and runs the fallback
// poller until an interrupt arrives.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	m := metrics.New()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	checks := map[string]httptransport.HealthCheck{}

	var investorsDB investorStore
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal(log, "failed to connect to postgres", err)
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := postgres.Migrate(db.DB); err != nil {
				fatal(log, "failed to run migrations", err)
			}
		}
		investorsDB = store.NewPostgresStore(db)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, using in-memory investor store")
		investorsDB = store.NewInMemoryStore()
	}

	var locker orchestrator.Locker = store.NewMemoryLocker()
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	if rdb != nil {
		defer rdb.Close()
		locker = store.NewRedisLocker(rdb.Client, cfg.KYC.LockTTL)
		checks["redis"] = rdb.Health
	}

	var publisher audit.Publisher = audit.NewLogPublisher(log)
	auditDone := make(chan struct{})
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			fatal(log, "failed to create kafka audit publisher", err)
		}
		defer kp.Close()
		worker := audit.NewWorker(kp, auditBuffer, log)
		go func() {
			defer close(auditDone)
			_ = worker.Run(ctx)
		}()
		publisher = worker
		checks["kafka"] = kp.Ping
	} else {
		close(auditDone)
	}

	var vp verificationProvider
	if cfg.Provider.APIToken != "" {
		vp = provider.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIToken,
			provider.WithTimeout(cfg.Provider.Timeout),
			provider.WithRateLimit(cfg.Provider.RPS, cfg.Provider.Burst),
			provider.WithBreaker(circuit.New("verification_provider")),
			provider.WithReferrer(cfg.Provider.Referrer),
			provider.WithMetrics(m),
			provider.WithLogger(log),
		)
	} else {
		log.Warn("VERIFICATION_API_TOKEN not set, using sandbox verification provider")
		vp = provider.NewSandbox()
	}
	if cfg.Provider.WebhookToken == "" {
		log.Warn("VERIFICATION_WEBHOOK_TOKEN not set, webhook callbacks will be rejected")
	}

	orch, err := orchestrator.New(vp, investorsDB, locker,
		orchestrator.WithLogger(log),
		orchestrator.WithAuditPublisher(publisher),
		orchestrator.WithMetrics(m),
		orchestrator.WithBatchConcurrency(cfg.KYC.BatchConcurrency),
	)
	if err != nil {
		fatal(log, "failed to build orchestrator", err)
	}
	rec, err := reconciler.New(vp, investorsDB, locker,
		reconciler.WithLogger(log),
		reconciler.WithAuditPublisher(publisher),
		reconciler.WithMetrics(m),
	)
	if err != nil {
		fatal(log, "failed to build reconciler", err)
	}
	investorSvc, err := investors.New(investorsDB,
		investors.WithLogger(log),
		investors.WithAuditPublisher(publisher),
		investors.WithMetrics(m),
		investors.WithValidityWindow(cfg.KYC.ValidityWindow),
		investors.WithManualPolicy(status.ManualPolicy{AllowExpired: cfg.KYC.AllowManualExpired}),
	)
	if err != nil {
		fatal(log, "failed to build investor service", err)
	}

	kycHandler := handler.New(investorSvc, orch, rec,
		middleware.NewHS256Validator(cfg.JWTSigningKey),
		cfg.Provider.WebhookToken,
		handler.WithLogger(log),
		handler.WithAuditPublisher(publisher),
	)

	scheduler, err := reconciler.NewScheduler(cfg.KYC.PollSchedule, rec, log, pollTimeout)
	if err != nil {
		fatal(log, "failed to schedule poller", err)
	}
	scheduler.Start()

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        m,
		RequestTimeout: requestTimeout,
		HealthChecks:   checks,
	}, kycHandler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting irdesk", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("poll still running at shutdown")
	}
	stop()
	select {
	case <-auditDone:
	case <-shutdownCtx.Done():
		log.Warn("audit queue not drained at shutdown")
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

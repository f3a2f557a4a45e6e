// Command server runs the activity-monitoring service: the audit recorder,
// the scheduled aggregator, and the admin HTTP surface.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"mentorlab/internal/audit"
	audithandler "mentorlab/internal/audit/handler"
	kafkasink "mentorlab/internal/audit/sink/kafka"
	auditmem "mentorlab/internal/audit/store/memory"
	auditpg "mentorlab/internal/audit/store/postgres"
	auditredis "mentorlab/internal/audit/store/redis"
	httpapi "mentorlab/internal/http"
	"mentorlab/internal/monitor"
	"mentorlab/internal/monitor/aggregator"
	monitorhandler "mentorlab/internal/monitor/handler"
	monitormem "mentorlab/internal/monitor/store/memory"
	monitorpg "mentorlab/internal/monitor/store/postgres"
	"mentorlab/internal/monitor/scheduler"
	"mentorlab/internal/platform/config"
	"mentorlab/internal/platform/httpserver"
	"mentorlab/internal/platform/logger"
	"mentorlab/internal/platform/metrics"
	"mentorlab/internal/platform/middleware"
	platformredis "mentorlab/internal/platform/redis"
	"mentorlab/internal/users"
	"mentorlab/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := make(map[string]func(ctx context.Context) error)

	// Storage backends. Postgres when configured, Redis for the audit log as
	// an alternative, in-memory for development runs.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			return err
		}
		health["postgres"] = db.PingContext
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		health["redis"] = redisClient.Health
	}

	var auditStore audit.Store
	var monitorStore monitor.Store
	var directory users.Directory
	switch {
	case db != nil:
		auditStore = auditpg.New(db)
		monitorStore = monitorpg.New(db)
		directory = users.NewPostgres(db)
	case redisClient != nil:
		auditStore = auditredis.New(redisClient.Client)
		monitorStore = monitormem.NewInMemoryStore()
		directory = users.NewInMemory()
		log.Warn("no DATABASE_URL set, monitoring records are not durable")
	default:
		auditStore = auditmem.NewInMemoryStore()
		monitorStore = monitormem.NewInMemoryStore()
		directory = users.NewInMemory()
		log.Warn("no DATABASE_URL or REDIS_URL set, running fully in-memory")
	}

	// Recorder, with the optional Kafka fan-out.
	recorderOpts := []audit.Option{
		audit.WithLogger(log),
		audit.WithMetrics(m),
		audit.WithBufferSize(cfg.Audit.BufferSize),
	}
	if cfg.Audit.KafkaBrokers != "" {
		sink, err := kafkasink.New(strings.Split(cfg.Audit.KafkaBrokers, ","), cfg.Audit.KafkaTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer sink.Close()
		recorderOpts = append(recorderOpts, audit.WithSinks(sink))
	}
	recorder := audit.NewRecorder(auditStore, recorderOpts...)
	defer recorder.Close()

	// Aggregation pipeline.
	agg := aggregator.New(auditStore, monitorStore,
		aggregator.Config{
			HourThreshold: cfg.Monitoring.HourThreshold,
			DayThreshold:  cfg.Monitoring.DayThreshold,
		},
		aggregator.WithLogger(log),
		aggregator.WithMetrics(m),
	)
	sched, err := scheduler.New(cfg.Monitoring.Schedule, agg.Run, log)
	if err != nil {
		return fmt.Errorf("invalid MONITOR_SCHEDULE: %w", err)
	}

	// HTTP surface.
	registry := monitor.NewService(monitorStore, directory, monitor.WithLogger(log))
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       log,
		Validator:    middleware.NewHMACValidator(cfg.JWTSigningKey),
		Audit:        audithandler.New(auditStore, log),
		Monitor:      monitorhandler.New(registry, agg, recorder, log, m),
		HealthChecks: health,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting aggregation scheduler", "schedule", cfg.Monitoring.Schedule)
		sched.Start()
		<-gctx.Done()
		sched.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

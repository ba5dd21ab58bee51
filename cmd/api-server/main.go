package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/api"
	"github.com/hackgods/agent-crm-scheduling/internal/appointment"
	"github.com/hackgods/agent-crm-scheduling/internal/config"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
	"github.com/hackgods/agent-crm-scheduling/internal/notify"
	redisclient "github.com/hackgods/agent-crm-scheduling/internal/redis"
	"github.com/hackgods/agent-crm-scheduling/internal/reminder"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("config load error")
	}
	logger.Init(cfg)
	log := logger.Log

	log.WithFields(logrus.Fields{
		"env":          cfg.Env,
		"http_port":    cfg.HTTPPort,
		"timezone":     cfg.Timezone.String(),
		"booking_lock": cfg.BookingLockEnabled,
		"version":      version,
	}).Info("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg, "api-server")
	cancelPg()
	if err != nil {
		log.WithError(err).Fatal("postgres connection error")
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	// Redis only carries notifications and the optional booking lock; the
	// API keeps serving without it.
	var (
		rdb       *redis.Client
		publisher appointment.Publisher
		redisPing api.Pinger
	)
	rdb, err = redisclient.NewRedisClient(rootCtx, cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, notifications and booking lock disabled")
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Warn("error closing redis")
			}
		}()
		log.Info("connected to Redis")
		publisher = notify.NewQueue(rdb, cfg.NotifyQueue)
		redisPing = api.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	procs := db.NewPgProcedures(pgPool)

	var locker redisclient.Locker = redisclient.NoopLocker{}
	if rdb != nil {
		locker = redisclient.NewLocker(rdb, cfg)
	}

	reminders := reminder.NewService(reminder.NewPgRepository(procs), cfg.Timezone)
	appointments := appointment.NewService(appointment.NewPgRepository(procs), locker, publisher, cfg.Timezone).
		WithMetrics(m)

	router := api.NewRouter(api.RouterConfig{
		Reminders:    reminders,
		Appointments: appointments,
		Postgres:     pgPool,
		Redis:        redisPing,
		Metrics:      m,
		Gatherer:     reg,
		CORSOrigins:  cfg.CORSAllowedOrigins,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	appointments.Drain(shutdownCtx)

	log.Info("api-server stopped")
}

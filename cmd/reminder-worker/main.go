package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/agent-crm-scheduling/internal/config"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
	"github.com/hackgods/agent-crm-scheduling/internal/notify"
	redisclient "github.com/hackgods/agent-crm-scheduling/internal/redis"
	"github.com/hackgods/agent-crm-scheduling/internal/reminder"
	"github.com/hackgods/agent-crm-scheduling/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("config load error")
	}
	logger.Init(cfg)
	log := logger.Log

	log.WithFields(logrus.Fields{
		"env":      cfg.Env,
		"schedule": cfg.ReminderCronSpec,
		"timezone": cfg.Timezone.String(),
		"smtp":     cfg.SMTP.Enabled(),
	}).Info("reminder-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg, "reminder-worker")
	cancelPg()
	if err != nil {
		log.WithError(err).Fatal("postgres connection error")
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(rootCtx, cfg)
	if err != nil {
		log.WithError(err).Fatal("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("error closing redis")
		}
	}()
	log.Info("connected to Redis")

	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)

	reminders := reminder.NewService(reminder.NewPgRepository(db.NewPgProcedures(pgPool)), cfg.Timezone)
	queue := notify.NewQueue(rdb, cfg.NotifyQueue)
	sched := scheduler.NewReminderScheduler(reminders, queue, m, cfg.ReminderCronSpec, cfg.Timezone)
	consumer := notify.NewConsumer(queue, notify.NewSender(cfg.SMTP), m)

	// Run once at startup; the per-day dedup key keeps this from resending.
	runCtx, cancelRun := context.WithTimeout(rootCtx, time.Minute)
	if n, err := sched.RunOnce(runCtx); err != nil {
		log.WithError(err).Error("initial auto-send run failed")
	} else {
		log.WithField("enqueued", n).Info("initial auto-send run finished")
	}
	cancelRun()

	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("scheduler start error")
	}

	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		consumer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", metricsSrv.Addr).Info("metrics listener started")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		sched.Stop(shutdownCtx)
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("reminder-worker stopped with error")
		return
	}
	log.Info("reminder-worker stopped")
}

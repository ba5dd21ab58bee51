package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/agent-crm-scheduling/internal/appointment"
	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
	"github.com/hackgods/agent-crm-scheduling/internal/reminder"
)

type RouterConfig struct {
	Reminders    *reminder.Service
	Appointments *appointment.Service

	Postgres Pinger
	Redis    Pinger

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	CORSOrigins []string
	Env         string
	Version     string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(cfg.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", AgentIDHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		// agent in the path
		r.Route("/agents/{agentId}", func(r chi.Router) {
			r.Use(AgentMiddleware)
			mountResources(r, cfg)
		})

		// agent in the X-Agent-ID header
		r.Group(func(r chi.Router) {
			r.Use(AgentMiddleware)
			mountResources(r, cfg)
		})
	})

	return r
}

func mountResources(r chi.Router, cfg RouterConfig) {
	rem := cfg.Reminders
	r.Route("/reminders", func(r chi.Router) {
		r.Get("/", listRemindersHandler(rem))
		r.Post("/", createReminderHandler(rem))
		r.Get("/today", todaysRemindersHandler(rem))
		r.Get("/type/{type}", remindersByTypeHandler(rem))
		r.Get("/status/{status}", remindersByStatusHandler(rem))
		r.Get("/birthdays", birthdayRemindersHandler(rem))
		r.Get("/policy-expiry", policyExpiryRemindersHandler(rem))
		r.Get("/settings", reminderSettingsHandler(rem))
		r.Put("/settings", updateReminderSettingsHandler(rem))
		r.Get("/statistics", reminderStatisticsHandler(rem))
		r.Get("/{id}", getReminderHandler(rem))
		r.Put("/{id}", updateReminderHandler(rem))
		r.Delete("/{id}", deleteReminderHandler(rem))
		r.Post("/{id}/complete", completeReminderHandler(rem))
		r.Patch("/{id}/status", updateReminderStatusHandler(rem))
	})

	appts := cfg.Appointments
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(appts))
		r.Post("/", createAppointmentHandler(appts))
		r.Get("/search", searchAppointmentsHandler(appts))
		r.Get("/today", todaysAppointmentsHandler(appts))
		r.Post("/check-conflicts", checkConflictsHandler(appts))
		r.Get("/week-view", weekViewHandler(appts))
		r.Get("/calendar-view", calendarViewHandler(appts))
		r.Post("/validate-phone", validatePhoneHandler(appts))
		r.Get("/{id}", getAppointmentHandler(appts))
		r.Put("/{id}", updateAppointmentHandler(appts))
		r.Delete("/{id}", deleteAppointmentHandler(appts))
		r.Patch("/{id}/status", updateAppointmentStatusHandler(appts))
	})
}

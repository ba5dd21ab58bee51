// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestDuration *prometheus.HistogramVec
	conflictChecks  *prometheus.CounterVec
	notifyFailures  *prometheus.CounterVec
	remindersQueued prometheus.Counter
}

// MustNew builds the collectors and registers them with reg. Collectors that
// are already registered are reused so tests can build several instances.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agent_crm",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		conflictChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agent_crm",
			Subsystem: "appointments",
			Name:      "conflict_checks_total",
			Help:      "Appointment conflict checks by outcome.",
		}, []string{"outcome"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agent_crm",
			Subsystem: "notify",
			Name:      "failures_total",
			Help:      "Notifications that could not be enqueued or delivered.",
		}, []string{"stage"}),
		remindersQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agent_crm",
			Subsystem: "reminders",
			Name:      "auto_send_enqueued_total",
			Help:      "Auto-send reminders handed to the notification queue.",
		}),
	}

	m.requestDuration = register(reg, m.requestDuration)
	m.conflictChecks = register(reg, m.conflictChecks)
	m.notifyFailures = register(reg, m.notifyFailures)
	m.remindersQueued = register(reg, m.remindersQueued)

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ConflictCheck records the outcome of one appointment conflict check.
func (m *Metrics) ConflictCheck(hasConflicts bool) {
	if m == nil {
		return
	}
	outcome := "clear"
	if hasConflicts {
		outcome = "conflict"
	}
	m.conflictChecks.WithLabelValues(outcome).Inc()
}

// NotifyFailure counts a dropped notification at the given stage
// ("enqueue" or "deliver").
func (m *Metrics) NotifyFailure(stage string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ReminderQueued() {
	if m == nil {
		return
	}
	m.remindersQueued.Inc()
}

// Middleware observes request duration labelled by the matched chi route
// pattern, so path parameters do not explode the label set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

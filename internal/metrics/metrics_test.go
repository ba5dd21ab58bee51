package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := MustNew(reg)
	b := MustNew(reg)

	a.ConflictCheck(true)
	b.ConflictCheck(true)
	b.ConflictCheck(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(a.conflictChecks.WithLabelValues("conflict")))
	assert.Equal(t, float64(1), testutil.ToFloat64(a.conflictChecks.WithLabelValues("clear")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ConflictCheck(true)
	m.NotifyFailure("enqueue")
	m.ReminderQueued()

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNew(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/reminders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reminders/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

package appointment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"back to back", "09:00:00", "10:00:00", "10:00:00", "11:00:00", false},
		{"back to back reversed", "10:00:00", "11:00:00", "09:00:00", "10:00:00", false},
		{"partial overlap", "09:00:00", "10:00:00", "09:30:00", "10:30:00", true},
		{"contained", "09:00:00", "12:00:00", "10:00:00", "10:15:00", true},
		{"identical", "09:00:00", "10:00:00", "09:00:00", "10:00:00", true},
		{"disjoint", "08:00:00", "08:30:00", "13:00:00", "14:00:00", false},
		{"one second overlap", "09:00:00", "10:00:01", "10:00:00", "11:00:00", true},
		{"empty interval", "09:30:00", "09:30:00", "09:00:00", "10:00:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestCheckConflicts_TouchingEndpointsDoNotConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.add(apptRow(uuid.New(), "2025-03-10", "09:00:00", "10:00:00", true))

	res, err := newTestService(repo, nil).CheckConflicts(context.Background(), uuid.New(), ConflictQuery{
		Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)
	assert.False(t, res.HasConflicts)
	assert.Empty(t, res.ConflictingAppointments)
	assert.NotNil(t, res.ConflictingAppointments)
	assert.Equal(t, "No conflicts found", res.Message)
}

func TestCheckConflicts_OverlapIsReported(t *testing.T) {
	repo := newFakeRepo()
	a := uuid.New()
	repo.add(apptRow(a, "2025-03-10", "09:00:00", "10:00:00", true))
	repo.add(apptRow(uuid.New(), "2025-03-11", "09:00:00", "10:00:00", true))

	res, err := newTestService(repo, nil).CheckConflicts(context.Background(), uuid.New(), ConflictQuery{
		Date: "2025-03-10T00:00:00Z", StartTime: "9:30", EndTime: "10:30 AM",
	})
	require.NoError(t, err)
	assert.True(t, res.HasConflicts)
	require.Len(t, res.ConflictingAppointments, 1)
	assert.Equal(t, a.String(), res.ConflictingAppointments[0].AppointmentID)
	assert.Equal(t, "Found 1 conflicting appointment(s)", res.Message)
	assert.Equal(t, "2025-03-10", repo.lastDate)
}

func TestCheckConflicts_ExcludedAppointmentIgnored(t *testing.T) {
	repo := newFakeRepo()
	b := uuid.New()
	repo.add(apptRow(b, "2025-03-10", "09:30:00", "10:30:00", true))
	excl := b.String()

	res, err := newTestService(repo, nil).CheckConflicts(context.Background(), uuid.New(), ConflictQuery{
		Date: "2025-03-10", StartTime: "09:30", EndTime: "10:30", ExcludeAppointmentID: &excl,
	})
	require.NoError(t, err)
	assert.False(t, res.HasConflicts)
}

func TestCheckConflicts_InactiveAndUntimedRowsIgnored(t *testing.T) {
	repo := newFakeRepo()
	repo.add(apptRow(uuid.New(), "2025-03-10", "09:00:00", "10:00:00", false))
	untimed := apptRow(uuid.New(), "2025-03-10", "09:00:00", "", true)
	delete(untimed, "end_time")
	repo.add(untimed)

	res, err := newTestService(repo, nil).CheckConflicts(context.Background(), uuid.New(), ConflictQuery{
		Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00",
	})
	require.NoError(t, err)
	assert.False(t, res.HasConflicts)
}

func TestCheckConflicts_Validation(t *testing.T) {
	bad := "not-a-uuid"
	tests := []struct {
		name  string
		q     ConflictQuery
		field string
	}{
		{"missing date", ConflictQuery{StartTime: "09:00", EndTime: "10:00"}, "appointmentDate"},
		{"bad date", ConflictQuery{Date: "2025-02-30", StartTime: "09:00", EndTime: "10:00"}, "appointmentDate"},
		{"bad start", ConflictQuery{Date: "2025-03-10", StartTime: "25:00", EndTime: "10:00"}, "startTime"},
		{"missing end", ConflictQuery{Date: "2025-03-10", StartTime: "09:00"}, "endTime"},
		{"end before start", ConflictQuery{Date: "2025-03-10", StartTime: "10:00", EndTime: "09:00"}, "endTime"},
		{"bad exclude", ConflictQuery{Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00", ExcludeAppointmentID: &bad}, "excludeAppointmentId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			_, err := newTestService(repo, nil).CheckConflicts(context.Background(), uuid.New(), tt.q)

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.False(t, repo.called("ListForDate"))
		})
	}
}

func TestCheckConflicts_RecordsOutcomeMetric(t *testing.T) {
	repo := newFakeRepo()
	repo.add(apptRow(uuid.New(), "2025-03-10", "09:00:00", "10:00:00", true))
	reg := prometheus.NewRegistry()
	svc := newTestService(repo, nil).WithMetrics(metrics.MustNew(reg))

	for _, start := range []string{"09:15", "11:00"} {
		_, err := svc.CheckConflicts(context.Background(), uuid.New(), ConflictQuery{
			Date: "2025-03-10", StartTime: start, EndTime: "12:00",
		})
		require.NoError(t, err)
	}

	n, err := testutil.GatherAndCount(reg, "agent_crm_appointments_conflict_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per outcome")
}

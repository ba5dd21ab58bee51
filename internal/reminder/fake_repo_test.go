package reminder

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

// fakeRepo is an in-memory Repository recording which procedures ran.
type fakeRepo struct {
	mu    sync.Mutex
	calls []string

	filteredRows   []rowmap.Row
	unfilteredRows []rowmap.Row
	lastFilter     Filter

	counts       SourceCounts
	countErr     error
	birthdayDays []MonthDay

	byID        map[uuid.UUID]rowmap.Row
	mutation    db.MutationResult
	lastDraft   Draft
	lastPatch   Patch
	lastStatus  Status
	lastDate    string
	lastHorizon int

	listRows     []rowmap.Row
	settingsRow  rowmap.Row
	lastSettings SettingsDraft
	statsRow     rowmap.Row
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]rowmap.Row)}
}

func (f *fakeRepo) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeRepo) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeRepo) ListFiltered(_ context.Context, _ uuid.UUID, flt Filter) ([]rowmap.Row, error) {
	f.record("ListFiltered")
	f.lastFilter = flt
	return f.filteredRows, nil
}

func (f *fakeRepo) ListUnfiltered(_ context.Context, _ uuid.UUID, flt Filter) ([]rowmap.Row, error) {
	f.record("ListUnfiltered")
	f.lastFilter = flt
	return f.unfilteredRows, nil
}

func (f *fakeRepo) CountAgentReminders(context.Context, uuid.UUID) (int64, error) {
	f.record("CountAgentReminders")
	return f.counts.Reminders, f.countErr
}

func (f *fakeRepo) CountExpiringPolicies(_ context.Context, _ uuid.UUID, days int) (int64, error) {
	f.record("CountExpiringPolicies")
	f.mu.Lock()
	f.lastHorizon = days
	f.mu.Unlock()
	return f.counts.PolicyExpiries, nil
}

func (f *fakeRepo) CountBirthdaysOn(_ context.Context, _ uuid.UUID, days []MonthDay) (int64, error) {
	f.record("CountBirthdaysOn")
	f.mu.Lock()
	f.birthdayDays = days
	f.mu.Unlock()
	return f.counts.Birthdays, nil
}

func (f *fakeRepo) CountActiveAppointments(context.Context, uuid.UUID) (int64, error) {
	f.record("CountActiveAppointments")
	return f.counts.Appointments, nil
}

func (f *fakeRepo) GetByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (rowmap.Row, error) {
	f.record("GetByID")
	row, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("reminder")
	}
	return row, nil
}

func (f *fakeRepo) Create(_ context.Context, _ uuid.UUID, d Draft) (db.MutationResult, error) {
	f.record("Create")
	f.lastDraft = d
	return f.mutation, nil
}

func (f *fakeRepo) Update(_ context.Context, _, _ uuid.UUID, p Patch) (db.MutationResult, error) {
	f.record("Update")
	f.lastPatch = p
	return f.mutation, nil
}

func (f *fakeRepo) Delete(context.Context, uuid.UUID, uuid.UUID) (db.MutationResult, error) {
	f.record("Delete")
	return f.mutation, nil
}

func (f *fakeRepo) Complete(context.Context, uuid.UUID, uuid.UUID, *string) (db.MutationResult, error) {
	f.record("Complete")
	return f.mutation, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, _, _ uuid.UUID, s Status) (db.MutationResult, error) {
	f.record("UpdateStatus")
	f.lastStatus = s
	return f.mutation, nil
}

func (f *fakeRepo) ListByType(context.Context, uuid.UUID, Type) ([]rowmap.Row, error) {
	f.record("ListByType")
	return f.listRows, nil
}

func (f *fakeRepo) ListByStatus(context.Context, uuid.UUID, Status) ([]rowmap.Row, error) {
	f.record("ListByStatus")
	return f.listRows, nil
}

func (f *fakeRepo) ListForDate(_ context.Context, _ uuid.UUID, date string) ([]rowmap.Row, error) {
	f.record("ListForDate")
	f.lastDate = date
	return f.listRows, nil
}

func (f *fakeRepo) ListBirthdaysOn(_ context.Context, _ uuid.UUID, days []MonthDay) ([]rowmap.Row, error) {
	f.record("ListBirthdaysOn")
	f.birthdayDays = days
	return f.listRows, nil
}

func (f *fakeRepo) ListPolicyExpiries(_ context.Context, _ uuid.UUID, days int) ([]rowmap.Row, error) {
	f.record("ListPolicyExpiries")
	f.lastHorizon = days
	return f.listRows, nil
}

func (f *fakeRepo) ListDueAutoSend(_ context.Context, date string) ([]rowmap.Row, error) {
	f.record("ListDueAutoSend")
	f.lastDate = date
	return f.listRows, nil
}

func (f *fakeRepo) GetSettings(context.Context, uuid.UUID) ([]rowmap.Row, error) {
	f.record("GetSettings")
	return f.listRows, nil
}

func (f *fakeRepo) UpsertSettings(_ context.Context, _ uuid.UUID, d SettingsDraft) (rowmap.Row, error) {
	f.record("UpsertSettings")
	f.lastSettings = d
	return f.settingsRow, nil
}

func (f *fakeRepo) GetStatistics(_ context.Context, _ uuid.UUID, today string) (rowmap.Row, error) {
	f.record("GetStatistics")
	f.lastDate = today
	return f.statsRow, nil
}

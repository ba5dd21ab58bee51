package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/notify"
	redisclient "github.com/hackgods/agent-crm-scheduling/internal/redis"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

var fixedNow = time.Date(2025, time.March, 5, 14, 0, 0, 0, time.UTC) // a Wednesday

type fakeRepo struct {
	mu    sync.Mutex
	calls []string

	rows     []rowmap.Row // every stored appointment
	byID     map[uuid.UUID]rowmap.Row
	mutation db.MutationResult
	listErr  error

	lastDraft  Draft
	lastPatch  Patch
	lastFilter ListFilter
	lastRange  [2]string
	lastDate   string
	lastTerm   string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]rowmap.Row)}
}

func (f *fakeRepo) add(row rowmap.Row) {
	f.rows = append(f.rows, row)
	if id, err := uuid.Parse(rowmap.ToString(row["appointmentId"])); err == nil {
		f.byID[id] = row
	}
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

func (f *fakeRepo) GetByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (rowmap.Row, error) {
	f.record("GetByID")
	row, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	return row, nil
}

func (f *fakeRepo) List(_ context.Context, _ uuid.UUID, flt ListFilter) ([]rowmap.Row, error) {
	f.record("List")
	f.lastFilter = flt
	return f.rows, nil
}

func (f *fakeRepo) Search(_ context.Context, _ uuid.UUID, term string) ([]rowmap.Row, error) {
	f.record("Search")
	f.lastTerm = term
	return f.rows, nil
}

func (f *fakeRepo) ListForDate(_ context.Context, _ uuid.UUID, date string) ([]rowmap.Row, error) {
	f.record("ListForDate")
	f.lastDate = date
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []rowmap.Row
	for _, row := range f.rows {
		if MapAppointment(row).Date == date {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListInRange(_ context.Context, _ uuid.UUID, start, end string) ([]rowmap.Row, error) {
	f.record("ListInRange")
	f.lastRange = [2]string{start, end}
	var out []rowmap.Row
	for _, row := range f.rows {
		d := MapAppointment(row).Date
		if d >= start && d <= end {
			out = append(out, row)
		}
	}
	return out, nil
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

func (f *fakeRepo) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, Status) (db.MutationResult, error) {
	f.record("UpdateStatus")
	return f.mutation, nil
}

func (f *fakeRepo) Delete(context.Context, uuid.UUID, uuid.UUID) (db.MutationResult, error) {
	f.record("Delete")
	return f.mutation, nil
}

func (f *fakeRepo) ValidatePhone(_ context.Context, _ uuid.UUID, phone string) (rowmap.Row, error) {
	f.record("ValidatePhone")
	return rowmap.Row{"is_valid": phone == "+15551234567", "formatted_number": phone}, nil
}

// apptRow builds a stored appointment row in snake_case, the way storage
// answers most of the time.
func apptRow(id uuid.UUID, date, start, end string, active bool) rowmap.Row {
	return rowmap.Row{
		"appointmentId":    id.String(),
		"title":            "Review " + start,
		"appointment_date": date,
		"start_time":       start,
		"end_time":         end,
		"is_active":        active,
		"client_email":     "client@example.com",
	}
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msg notify.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakePublisher) published() []notify.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Message(nil), p.msgs...)
}

// busyLocker refuses every lock, as if another booking held it.
type busyLocker struct{}

func (busyLocker) WithBookingLock(context.Context, uuid.UUID, string, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

var errStorageDown = errors.New("storage unavailable")

func newTestService(repo *fakeRepo, pub Publisher) *Service {
	return NewService(repo, nil, pub, time.UTC).WithClock(func() time.Time { return fixedNow })
}

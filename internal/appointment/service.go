package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
	"github.com/hackgods/agent-crm-scheduling/internal/notify"
	redisclient "github.com/hackgods/agent-crm-scheduling/internal/redis"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100

	notifyTimeout = 10 * time.Second
)

// Publisher hands a notification to the delivery queue.
type Publisher interface {
	Publish(ctx context.Context, msg notify.Message) error
}

type Service struct {
	repo      Repository
	locker    redisclient.Locker
	publisher Publisher
	metrics   *metrics.Metrics
	loc       *time.Location
	now       func() time.Time

	// notifications still being published
	inflight sync.WaitGroup
}

func NewService(repo Repository, locker redisclient.Locker, publisher Publisher, loc *time.Location) *Service {
	if locker == nil {
		locker = redisclient.NoopLocker{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		locker:    locker,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

// Drain waits for pending creation notifications, up to ctx's deadline.
func (s *Service) Drain(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Service) Get(ctx context.Context, agentID, id uuid.UUID) (*Appointment, error) {
	row, err := s.repo.GetByID(ctx, agentID, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	a := MapAppointment(row)
	return &a, nil
}

// Create validates the input, rejects it when the window overlaps another
// active appointment, writes it and queues a notification.
func (s *Service) Create(ctx context.Context, agentID uuid.UUID, in CreateInput) (db.MutationResult, *Appointment, error) {
	d, err := buildDraft(in)
	if err != nil {
		return db.MutationResult{}, nil, err
	}

	var res db.MutationResult
	err = s.locker.WithBookingLock(ctx, agentID, d.Date, func(lockCtx context.Context) error {
		if d.StartTime != nil && d.EndTime != nil {
			check, err := s.checkWindow(lockCtx, agentID, d.Date, *d.StartTime, *d.EndTime, nil)
			if err != nil {
				return err
			}
			if check.HasConflicts {
				return &ConflictError{Result: *check}
			}
		}

		written, err := s.repo.Create(lockCtx, agentID, d)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		res = written
		return nil
	})
	if err != nil {
		return db.MutationResult{}, nil, lockError(err, d.Date)
	}
	if !res.Success {
		return res, nil, apperr.Validation("", "%s", nonEmpty(res.Message, "appointment could not be created"))
	}
	if res.Message == "" {
		res.Message = "Appointment created successfully"
	}

	entry := logger.Log.WithFields(logrus.Fields{
		"agent_id":       agentID,
		"appointment_id": res.ID,
		"date":           d.Date,
	})
	entry.Info("appointment created")

	created := s.loadCreated(ctx, agentID, res.ID, entry)
	if created != nil {
		s.notifyCreated(ctx, agentID, *created)
	}
	return res, created, nil
}

func (s *Service) loadCreated(ctx context.Context, agentID uuid.UUID, rawID string, entry *logrus.Entry) *Appointment {
	id, err := uuid.Parse(rawID)
	if err != nil {
		entry.Warn("create returned no usable appointment id")
		return nil
	}
	a, err := s.Get(ctx, agentID, id)
	if err != nil {
		entry.WithError(err).Warn("could not reload created appointment")
		return nil
	}
	return a
}

// notifyCreated publishes in the background with its own deadline. The
// request's cancellation does not reach it and its failure is only logged.
func (s *Service) notifyCreated(ctx context.Context, agentID uuid.UUID, a Appointment) {
	if s.publisher == nil {
		return
	}
	msg := createdMessage(agentID, a)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := s.publisher.Publish(pubCtx, msg); err != nil {
			s.metrics.NotifyFailure("enqueue")
			logger.Log.WithFields(logrus.Fields{
				"agent_id":       agentID,
				"appointment_id": a.AppointmentID,
			}).WithError(err).Warn("appointment notification not queued")
		}
	}()
}

func createdMessage(agentID uuid.UUID, a Appointment) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", a.Title)
	fmt.Fprintf(&b, "Date: %s\n", a.Date)
	if a.FormattedTime != "" {
		fmt.Fprintf(&b, "Time: %s\n", a.FormattedTime)
	}
	if a.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", a.Location)
	}
	return notify.Message{
		Kind:      notify.KindAppointmentCreated,
		AgentID:   agentID.String(),
		EntityID:  a.AppointmentID,
		Recipient: a.ClientEmail,
		Subject:   "Appointment scheduled: " + a.Title,
		Body:      b.String(),
	}
}

// Update applies a partial update. When the date or times change, the
// resulting window is checked against the agent's other appointments.
func (s *Service) Update(ctx context.Context, agentID, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	p, err := buildPatch(in)
	if err != nil {
		return nil, err
	}

	timing := p.Date != nil || p.StartTime != nil || p.EndTime != nil
	date, start, end := "", (*string)(nil), (*string)(nil)
	if timing {
		current, err := s.Get(ctx, agentID, id)
		if err != nil {
			return nil, err
		}
		date, start, end = current.Date, current.StartTime, current.EndTime
		if p.Date != nil {
			date = *p.Date
		}
		if p.StartTime != nil {
			start = p.StartTime
		}
		if p.EndTime != nil {
			end = p.EndTime
		}
		if start != nil && end != nil && *end <= *start {
			return nil, apperr.Validation("endTime", "must be after startTime")
		}
	}

	var res db.MutationResult
	write := func(lockCtx context.Context) error {
		if timing && date != "" && start != nil && end != nil {
			check, err := s.checkWindow(lockCtx, agentID, date, *start, *end, &id)
			if err != nil {
				return err
			}
			if check.HasConflicts {
				return &ConflictError{Result: *check}
			}
		}
		written, err := s.repo.Update(lockCtx, agentID, id, p)
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		res = written
		return nil
	}

	if timing && date != "" {
		err = s.locker.WithBookingLock(ctx, agentID, date, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return nil, lockError(err, date)
	}
	if !res.Success || res.RowsAffected == 0 {
		return nil, apperr.NotFound("appointment")
	}

	return s.Get(ctx, agentID, id)
}

func lockError(err error, date string) error {
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return fmt.Errorf("%w: another booking for %s is in progress, please retry", apperr.ErrConflict, date)
	}
	return err
}

func (s *Service) Delete(ctx context.Context, agentID, id uuid.UUID) (db.MutationResult, error) {
	res, err := s.repo.Delete(ctx, agentID, id)
	if err != nil {
		return db.MutationResult{}, fmt.Errorf("delete appointment: %w", err)
	}
	if !res.Success || res.RowsAffected == 0 {
		return res, apperr.NotFound("appointment")
	}
	if res.Message == "" {
		res.Message = "Appointment deleted successfully"
	}
	return res, nil
}

func (s *Service) UpdateStatus(ctx context.Context, agentID, id uuid.UUID, status Status) (db.MutationResult, error) {
	if !status.Valid() {
		return db.MutationResult{}, apperr.Validation("status", "unknown appointment status %q", status)
	}
	res, err := s.repo.UpdateStatus(ctx, agentID, id, status)
	if err != nil {
		return db.MutationResult{}, fmt.Errorf("update appointment status: %w", err)
	}
	if !res.Success || res.RowsAffected == 0 {
		return res, apperr.NotFound("appointment")
	}
	if res.Message == "" {
		res.Message = "Appointment status updated successfully"
	}
	return res, nil
}

func (s *Service) List(ctx context.Context, agentID uuid.UUID, f ListFilter) ([]Appointment, error) {
	f, err := normalizeListFilter(f)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, agentID, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return MapAppointments(rows), nil
}

func (s *Service) Search(ctx context.Context, agentID uuid.UUID, term string) ([]Appointment, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.Validation("q", "search term is required")
	}
	rows, err := s.repo.Search(ctx, agentID, term)
	if err != nil {
		return nil, fmt.Errorf("search appointments: %w", err)
	}
	return MapAppointments(rows), nil
}

// Today lists the agent's appointments dated today in the reference timezone.
func (s *Service) Today(ctx context.Context, agentID uuid.UUID) ([]Appointment, error) {
	rows, err := s.repo.ListForDate(ctx, agentID, s.today().Format(temporal.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list today's appointments: %w", err)
	}
	return sortByStart(MapAppointments(rows)), nil
}

func (s *Service) ValidatePhone(ctx context.Context, agentID uuid.UUID, phone string) (PhoneValidation, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return PhoneValidation{}, apperr.Validation("phoneNumber", "is required")
	}
	row, err := s.repo.ValidatePhone(ctx, agentID, phone)
	if err != nil {
		return PhoneValidation{}, fmt.Errorf("validate phone number: %w", err)
	}
	return MapPhoneValidation(row), nil
}

func normalizeListFilter(f ListFilter) (ListFilter, error) {
	if f.PageNumber == 0 {
		f.PageNumber = DefaultPageNumber
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageNumber < 1 {
		return f, apperr.Validation("pageNumber", "must be at least 1")
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		return f, apperr.Validation("pageSize", "must be between 1 and %d", MaxPageSize)
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, apperr.Validation("status", "unknown appointment status %q", f.Status)
	}

	f.StartDate = temporal.NormalizeDateToISODate(f.StartDate)
	f.EndDate = temporal.NormalizeDateToISODate(f.EndDate)
	if f.StartDate != "" && !temporal.IsValidDate(f.StartDate) {
		return f, apperr.Validation("startDate", "must be a valid date")
	}
	if f.EndDate != "" && !temporal.IsValidDate(f.EndDate) {
		return f, apperr.Validation("endDate", "must be a valid date")
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return f, apperr.Validation("startDate", "must not be after endDate")
	}
	return f, nil
}

func buildDraft(in CreateInput) (Draft, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Draft{}, apperr.Validation("title", "is required")
	}

	date := temporal.NormalizeDateToISODate(in.Date)
	if date == "" {
		return Draft{}, apperr.Validation("appointmentDate", "is required")
	}
	if !temporal.IsValidDate(date) {
		return Draft{}, apperr.Validation("appointmentDate", "must be a valid date")
	}

	start := temporal.NormalizeTime(in.StartTime)
	end := temporal.NormalizeTime(in.EndTime)
	if start != nil && end != nil && *end <= *start {
		return Draft{}, apperr.Validation("endTime", "must be after startTime")
	}

	typ := in.Type
	if typ == "" {
		typ = TypeMeeting
	}
	if !typ.Valid() {
		return Draft{}, apperr.Validation("type", "unknown appointment type %q", typ)
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Draft{}, apperr.Validation("priority", "must be one of High, Medium, Low")
	}

	clientID, err := parseOptionalUUID("clientId", in.ClientID)
	if err != nil {
		return Draft{}, err
	}

	return Draft{
		ClientID:      clientID,
		ClientName:    optional(in.ClientName),
		ClientPhone:   optional(in.ClientPhone),
		ClientEmail:   optional(in.ClientEmail),
		ClientAddress: optional(in.ClientAddress),
		Title:         title,
		Description:   optional(in.Description),
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		Location:      optional(in.Location),
		Type:          typ,
		Priority:      priority,
		Notes:         optional(in.Notes),
		ReminderSet:   in.ReminderSet,
	}, nil
}

func buildPatch(in UpdateInput) (Patch, error) {
	p := Patch{
		ClientName:    in.ClientName,
		ClientPhone:   in.ClientPhone,
		ClientEmail:   in.ClientEmail,
		ClientAddress: in.ClientAddress,
		Description:   in.Description,
		Location:      in.Location,
		Notes:         in.Notes,
		ReminderSet:   in.ReminderSet,
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Patch{}, apperr.Validation("title", "must not be empty")
		}
		p.Title = &title
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return Patch{}, apperr.Validation("type", "unknown appointment type %q", *in.Type)
		}
		p.Type = in.Type
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return Patch{}, apperr.Validation("status", "unknown appointment status %q", *in.Status)
		}
		p.Status = in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return Patch{}, apperr.Validation("priority", "must be one of High, Medium, Low")
		}
		p.Priority = in.Priority
	}
	if in.Date != nil {
		date := temporal.NormalizeDateToISODate(*in.Date)
		if date != "" {
			if !temporal.IsValidDate(date) {
				return Patch{}, apperr.Validation("appointmentDate", "must be a valid date")
			}
			p.Date = &date
		}
	}
	// malformed times are dropped, leaving the stored value in place
	if in.StartTime != nil {
		p.StartTime = temporal.NormalizeTime(*in.StartTime)
	}
	if in.EndTime != nil {
		p.EndTime = temporal.NormalizeTime(*in.EndTime)
	}
	return p, nil
}

func parseOptionalUUID(field, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation(field, "must be a valid UUID")
	}
	return &id, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

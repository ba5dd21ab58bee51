package reminder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

const (
	DefaultPolicyHorizon = 30
	MaxPolicyHorizon     = 365
	defaultAdvanceNotice = "1 day"
	defaultDaysBefore    = 1
	maxDaysBefore        = 365
)

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// WithClock replaces the time source; used by tests and the worker.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// today is midnight of the current day in the reference timezone.
func (s *Service) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Service) Today() string {
	return s.today().Format(temporal.DateLayout)
}

// Get returns a single reminder owned by the agent.
func (s *Service) Get(ctx context.Context, agentID, id uuid.UUID) (*Reminder, error) {
	row, err := s.repo.GetByID(ctx, agentID, id)
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	r := MapReminder(row)
	return &r, nil
}

func (s *Service) Create(ctx context.Context, agentID uuid.UUID, in CreateInput) (db.MutationResult, error) {
	d, err := buildDraft(in)
	if err != nil {
		return db.MutationResult{}, err
	}

	res, err := s.repo.Create(ctx, agentID, d)
	if err != nil {
		return db.MutationResult{}, fmt.Errorf("create reminder: %w", err)
	}
	if !res.Success {
		return res, apperr.Validation("", "%s", nonEmpty(res.Message, "reminder could not be created"))
	}
	if res.Message == "" {
		res.Message = "Reminder created successfully"
	}

	logger.Log.WithFields(logrus.Fields{
		"agent_id":    agentID,
		"reminder_id": res.ID,
		"type":        d.Type,
	}).Info("reminder created")

	return res, nil
}

func (s *Service) Update(ctx context.Context, agentID, id uuid.UUID, in UpdateInput) (*Reminder, error) {
	p, err := buildPatch(in)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Update(ctx, agentID, id, p)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	if !res.Success || res.RowsAffected == 0 {
		return nil, apperr.NotFound("reminder")
	}

	return s.Get(ctx, agentID, id)
}

func (s *Service) Delete(ctx context.Context, agentID, id uuid.UUID) (db.MutationResult, error) {
	res, err := s.repo.Delete(ctx, agentID, id)
	if err != nil {
		return db.MutationResult{}, fmt.Errorf("delete reminder: %w", err)
	}
	if !res.Success || res.RowsAffected == 0 {
		return res, apperr.NotFound("reminder")
	}
	if res.Message == "" {
		res.Message = "Reminder deleted successfully"
	}
	return res, nil
}

// Complete moves an active reminder to Completed.
func (s *Service) Complete(ctx context.Context, agentID, id uuid.UUID, notes *string) (db.MutationResult, error) {
	if err := s.checkTransition(ctx, agentID, id, StatusCompleted); err != nil {
		return db.MutationResult{}, err
	}

	res, err := s.repo.Complete(ctx, agentID, id, trimmedPtr(notes))
	if err != nil {
		return db.MutationResult{}, fmt.Errorf("complete reminder: %w", err)
	}
	if !res.Success || res.RowsAffected == 0 {
		return res, apperr.NotFound("reminder")
	}
	if res.Message == "" {
		res.Message = "Reminder completed successfully"
	}
	return res, nil
}

// SetStatus applies an explicit status transition.
func (s *Service) SetStatus(ctx context.Context, agentID, id uuid.UUID, status Status) (db.MutationResult, error) {
	if !status.Valid() {
		return db.MutationResult{}, apperr.Validation("Status", "must be one of Active, Completed, Cancelled")
	}
	if err := s.checkTransition(ctx, agentID, id, status); err != nil {
		return db.MutationResult{}, err
	}

	res, err := s.repo.UpdateStatus(ctx, agentID, id, status)
	if err != nil {
		return db.MutationResult{}, fmt.Errorf("update reminder status: %w", err)
	}
	if !res.Success || res.RowsAffected == 0 {
		return res, apperr.NotFound("reminder")
	}
	if res.Message == "" {
		res.Message = "Reminder status updated successfully"
	}
	return res, nil
}

func (s *Service) checkTransition(ctx context.Context, agentID, id uuid.UUID, to Status) error {
	current, err := s.Get(ctx, agentID, id)
	if err != nil {
		return err
	}
	if !CanTransition(current.Status, to) {
		return fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidStatusTransition, current.Status, to)
	}
	return nil
}

func (s *Service) ByType(ctx context.Context, agentID uuid.UUID, t Type) ([]Reminder, error) {
	if !t.Valid() {
		return nil, apperr.Validation("ReminderType", "unknown reminder type %q", t)
	}
	rows, err := s.repo.ListByType(ctx, agentID, t)
	if err != nil {
		return nil, fmt.Errorf("list reminders by type: %w", err)
	}
	return MapReminders(rows), nil
}

func (s *Service) ByStatus(ctx context.Context, agentID uuid.UUID, st Status) ([]Reminder, error) {
	if !st.Valid() {
		return nil, apperr.Validation("Status", "unknown status %q", st)
	}
	rows, err := s.repo.ListByStatus(ctx, agentID, st)
	if err != nil {
		return nil, fmt.Errorf("list reminders by status: %w", err)
	}
	return MapReminders(rows), nil
}

// TodaysReminders lists reminders dated today in the reference timezone.
func (s *Service) TodaysReminders(ctx context.Context, agentID uuid.UUID) ([]Reminder, error) {
	rows, err := s.repo.ListForDate(ctx, agentID, s.Today())
	if err != nil {
		return nil, fmt.Errorf("list today's reminders: %w", err)
	}
	return MapReminders(rows), nil
}

func (s *Service) Settings(ctx context.Context, agentID uuid.UUID) ([]Settings, error) {
	rows, err := s.repo.GetSettings(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("get reminder settings: %w", err)
	}
	out := make([]Settings, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapSettings(row))
	}
	return out, nil
}

// UpdateSettings upserts the settings row for (agent, type).
func (s *Service) UpdateSettings(ctx context.Context, agentID uuid.UUID, in SettingsInput) (*Settings, error) {
	if !in.ReminderType.Valid() {
		return nil, apperr.Validation("ReminderType", "unknown reminder type %q", in.ReminderType)
	}

	d := SettingsDraft{
		Type:       in.ReminderType,
		IsEnabled:  true,
		DaysBefore: defaultDaysBefore,
		TimeOfDay:  temporal.NormalizeTime(in.TimeOfDay),
	}
	if in.IsEnabled != nil {
		d.IsEnabled = *in.IsEnabled
	}
	if in.DaysBefore != nil {
		if *in.DaysBefore < 0 || *in.DaysBefore > maxDaysBefore {
			return nil, apperr.Validation("DaysBefore", "must be between 0 and %d", maxDaysBefore)
		}
		d.DaysBefore = *in.DaysBefore
	}
	if in.RepeatDaily != nil {
		d.RepeatDaily = *in.RepeatDaily
	}

	row, err := s.repo.UpsertSettings(ctx, agentID, d)
	if err != nil {
		return nil, fmt.Errorf("update reminder settings: %w", err)
	}
	out := MapSettings(row)
	return &out, nil
}

// Statistics returns the independent reminder aggregates for the agent.
func (s *Service) Statistics(ctx context.Context, agentID uuid.UUID) (Statistics, error) {
	row, err := s.repo.GetStatistics(ctx, agentID, s.Today())
	if err != nil {
		return Statistics{}, fmt.Errorf("get reminder statistics: %w", err)
	}
	return MapStatistics(row), nil
}

// Birthdays lists clients whose birthday is today, with their age.
func (s *Service) Birthdays(ctx context.Context, agentID uuid.UUID) ([]BirthdayReminder, error) {
	today := s.today()

	rows, err := s.repo.ListBirthdaysOn(ctx, agentID, BirthdayWindow(today, 1))
	if err != nil {
		return nil, fmt.Errorf("list birthday reminders: %w", err)
	}

	out := make([]BirthdayReminder, 0, len(rows))
	for _, row := range rows {
		b := MapBirthday(row)
		dob, err := temporal.ParseDate(b.DateOfBirth, time.UTC)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"agent_id":  agentID,
				"client_id": b.ClientID,
			}).Warn("skipping birthday row with unreadable date of birth")
			continue
		}
		if !IsBirthday(dob, today) {
			continue
		}
		b.Age = AgeOn(dob, today)
		out = append(out, b)
	}
	return out, nil
}

// ParseDaysAhead validates the policy-expiry horizon. Empty input means the
// default of 30 days.
func ParseDaysAhead(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPolicyHorizon, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("daysAhead", "must be an integer between 1 and %d", MaxPolicyHorizon)
	}
	if err := validateHorizon(n); err != nil {
		return 0, err
	}
	return n, nil
}

func validateHorizon(days int) error {
	if days < 1 || days > MaxPolicyHorizon {
		return apperr.Validation("daysAhead", "must be an integer between 1 and %d", MaxPolicyHorizon)
	}
	return nil
}

// PolicyExpiries lists active policies ending within daysAhead days.
func (s *Service) PolicyExpiries(ctx context.Context, agentID uuid.UUID, daysAhead int) ([]PolicyExpiryReminder, error) {
	if err := validateHorizon(daysAhead); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListPolicyExpiries(ctx, agentID, daysAhead)
	if err != nil {
		return nil, fmt.Errorf("list policy expiry reminders: %w", err)
	}

	today := s.today()
	out := make([]PolicyExpiryReminder, 0, len(rows))
	for _, row := range rows {
		p := MapPolicyExpiry(row)
		if p.DaysUntilExpiry < 0 {
			if end, err := temporal.ParseDate(p.EndDate, s.loc); err == nil {
				p.DaysUntilExpiry = daysBetween(today, end)
			} else {
				p.DaysUntilExpiry = 0
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int64 {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int64(ub.Sub(ua).Hours() / 24)
}

// DueAutoSend lists today's active auto-send reminders across all agents.
func (s *Service) DueAutoSend(ctx context.Context) ([]Reminder, error) {
	rows, err := s.repo.ListDueAutoSend(ctx, s.Today())
	if err != nil {
		return nil, fmt.Errorf("list due auto-send reminders: %w", err)
	}
	return MapReminders(rows), nil
}

// Validation and normalization of inputs

func buildDraft(in CreateInput) (Draft, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Draft{}, apperr.Validation("Title", "is required")
	}
	if in.ReminderType == "" {
		return Draft{}, apperr.Validation("ReminderType", "is required")
	}
	if !in.ReminderType.Valid() {
		return Draft{}, apperr.Validation("ReminderType", "unknown reminder type %q", in.ReminderType)
	}

	date := temporal.NormalizeDateToISODate(in.ReminderDate)
	if date == "" {
		return Draft{}, apperr.Validation("ReminderDate", "is required")
	}
	if !temporal.IsValidDate(date) {
		return Draft{}, apperr.Validation("ReminderDate", "must be a valid date")
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Draft{}, apperr.Validation("Priority", "must be one of High, Medium, Low")
	}

	clientID, err := parseOptionalUUID("ClientId", in.ClientID)
	if err != nil {
		return Draft{}, err
	}
	appointmentID, err := parseOptionalUUID("AppointmentId", in.AppointmentID)
	if err != nil {
		return Draft{}, err
	}

	return Draft{
		ClientID:               clientID,
		AppointmentID:          appointmentID,
		Type:                   in.ReminderType,
		Title:                  title,
		Description:            optional(in.Description),
		Date:                   date,
		Time:                   temporal.NormalizeTime(in.ReminderTime),
		ClientName:             optional(in.ClientName),
		Priority:               priority,
		EnableSMS:              in.EnableSMS,
		EnableWhatsApp:         in.EnableWhatsApp,
		EnablePushNotification: in.EnablePushNotification,
		AdvanceNotice:          nonEmpty(strings.TrimSpace(in.AdvanceNotice), defaultAdvanceNotice),
		CustomMessage:          optional(in.CustomMessage),
		AutoSend:               in.AutoSend,
		Notes:                  optional(in.Notes),
	}, nil
}

func buildPatch(in UpdateInput) (Patch, error) {
	p := Patch{
		Description:            in.Description,
		ClientName:             in.ClientName,
		EnableSMS:              in.EnableSMS,
		EnableWhatsApp:         in.EnableWhatsApp,
		EnablePushNotification: in.EnablePushNotification,
		AdvanceNotice:          in.AdvanceNotice,
		CustomMessage:          in.CustomMessage,
		AutoSend:               in.AutoSend,
		Notes:                  in.Notes,
	}

	if in.ReminderType != nil {
		if !in.ReminderType.Valid() {
			return Patch{}, apperr.Validation("ReminderType", "unknown reminder type %q", *in.ReminderType)
		}
		p.Type = in.ReminderType
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Patch{}, apperr.Validation("Title", "must not be empty")
		}
		p.Title = &title
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return Patch{}, apperr.Validation("Priority", "must be one of High, Medium, Low")
		}
		p.Priority = in.Priority
	}
	if in.ReminderDate != nil {
		date := temporal.NormalizeDateToISODate(*in.ReminderDate)
		if date != "" {
			if !temporal.IsValidDate(date) {
				return Patch{}, apperr.Validation("ReminderDate", "must be a valid date")
			}
			p.Date = &date
		}
	}
	if in.ReminderTime != nil {
		p.Time = temporal.NormalizeTime(*in.ReminderTime)
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

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

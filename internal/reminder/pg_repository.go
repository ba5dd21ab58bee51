package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

// PgRepository talks to the reminder stored procedures.
type PgRepository struct {
	procs db.Procedures
}

func NewPgRepository(procs db.Procedures) *PgRepository {
	return &PgRepository{procs: procs}
}

// Helpers

func dateArg(s string) any {
	if s == "" {
		return nil
	}
	t, err := time.Parse(temporal.DateLayout, s)
	if err != nil {
		// let storage reject it with a format error
		return s
	}
	return t
}

func optUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func optString[T ~string](s T) any {
	if s == "" {
		return nil
	}
	return string(s)
}

func optStringPtr[T ~string](p *T) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func splitMonthDays(days []MonthDay) (months, dayNums []int32) {
	months = make([]int32, len(days))
	dayNums = make([]int32, len(days))
	for i, md := range days {
		months[i] = int32(md.Month)
		dayNums[i] = int32(md.Day)
	}
	return months, dayNums
}

func (r *PgRepository) count(ctx context.Context, name string, args ...any) (int64, error) {
	rows, err := r.procs.Call(ctx, name, args...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for _, v := range rows[0] {
		n, ok := rowmap.ToInt(v)
		if !ok {
			return 0, fmt.Errorf("%s: unexpected count value %T", name, v)
		}
		return n, nil
	}
	return 0, nil
}

// Interface methods

func (r *PgRepository) ListFiltered(ctx context.Context, agentID uuid.UUID, f Filter) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_reminders_filtered",
		agentID,
		optString(f.Type),
		optString(f.Status),
		optString(f.Priority),
		dateArg(f.StartDate),
		dateArg(f.EndDate),
		optUUID(f.ClientID),
		f.PageNumber,
		f.PageSize,
	)
}

func (r *PgRepository) ListUnfiltered(ctx context.Context, agentID uuid.UUID, f Filter) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_reminders",
		agentID,
		dateArg(f.StartDate),
		dateArg(f.EndDate),
		f.PageNumber,
		f.PageSize,
	)
}

func (r *PgRepository) CountAgentReminders(ctx context.Context, agentID uuid.UUID) (int64, error) {
	return r.count(ctx, "sp_count_agent_reminders", agentID)
}

func (r *PgRepository) CountExpiringPolicies(ctx context.Context, agentID uuid.UUID, daysAhead int) (int64, error) {
	return r.count(ctx, "sp_count_expiring_policies", agentID, daysAhead)
}

func (r *PgRepository) CountBirthdaysOn(ctx context.Context, agentID uuid.UUID, days []MonthDay) (int64, error) {
	months, dayNums := splitMonthDays(days)
	return r.count(ctx, "sp_count_birthdays_on", agentID, months, dayNums)
}

func (r *PgRepository) CountActiveAppointments(ctx context.Context, agentID uuid.UUID) (int64, error) {
	return r.count(ctx, "sp_count_active_appointments", agentID)
}

func (r *PgRepository) GetByID(ctx context.Context, agentID, id uuid.UUID) (rowmap.Row, error) {
	rows, err := r.procs.Call(ctx, "sp_get_reminder_by_id", agentID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("reminder")
	}
	return rows[0], nil
}

func (r *PgRepository) Create(ctx context.Context, agentID uuid.UUID, d Draft) (db.MutationResult, error) {
	return db.Mutate(ctx, r.procs, "sp_create_reminder",
		agentID,
		optUUID(d.ClientID),
		optUUID(d.AppointmentID),
		string(d.Type),
		d.Title,
		d.Description,
		dateArg(d.Date),
		d.Time,
		d.ClientName,
		string(d.Priority),
		d.EnableSMS,
		d.EnableWhatsApp,
		d.EnablePushNotification,
		d.AdvanceNotice,
		d.CustomMessage,
		d.AutoSend,
		d.Notes,
	)
}

func (r *PgRepository) Update(ctx context.Context, agentID, id uuid.UUID, p Patch) (db.MutationResult, error) {
	var date any
	if p.Date != nil {
		date = dateArg(*p.Date)
	}
	return db.Mutate(ctx, r.procs, "sp_update_reminder",
		agentID,
		id,
		optStringPtr(p.Type),
		p.Title,
		p.Description,
		date,
		p.Time,
		p.ClientName,
		optStringPtr(p.Priority),
		p.EnableSMS,
		p.EnableWhatsApp,
		p.EnablePushNotification,
		p.AdvanceNotice,
		p.CustomMessage,
		p.AutoSend,
		p.Notes,
	)
}

func (r *PgRepository) Delete(ctx context.Context, agentID, id uuid.UUID) (db.MutationResult, error) {
	return db.Mutate(ctx, r.procs, "sp_delete_reminder", agentID, id)
}

func (r *PgRepository) Complete(ctx context.Context, agentID, id uuid.UUID, notes *string) (db.MutationResult, error) {
	return db.Mutate(ctx, r.procs, "sp_complete_reminder", agentID, id, notes)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, agentID, id uuid.UUID, status Status) (db.MutationResult, error) {
	return db.Mutate(ctx, r.procs, "sp_update_reminder_status", agentID, id, string(status))
}

func (r *PgRepository) ListByType(ctx context.Context, agentID uuid.UUID, t Type) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_reminders_by_type", agentID, string(t))
}

func (r *PgRepository) ListByStatus(ctx context.Context, agentID uuid.UUID, s Status) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_reminders_by_status", agentID, string(s))
}

func (r *PgRepository) ListForDate(ctx context.Context, agentID uuid.UUID, date string) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_todays_reminders", agentID, dateArg(date))
}

func (r *PgRepository) ListBirthdaysOn(ctx context.Context, agentID uuid.UUID, days []MonthDay) ([]rowmap.Row, error) {
	months, dayNums := splitMonthDays(days)
	return r.procs.Call(ctx, "sp_get_birthdays_on", agentID, months, dayNums)
}

func (r *PgRepository) ListPolicyExpiries(ctx context.Context, agentID uuid.UUID, daysAhead int) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_policy_expiry_reminders", agentID, daysAhead)
}

func (r *PgRepository) ListDueAutoSend(ctx context.Context, date string) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_due_auto_send_reminders", dateArg(date))
}

func (r *PgRepository) GetSettings(ctx context.Context, agentID uuid.UUID) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_reminder_settings", agentID)
}

func (r *PgRepository) UpsertSettings(ctx context.Context, agentID uuid.UUID, d SettingsDraft) (rowmap.Row, error) {
	rows, err := r.procs.Call(ctx, "sp_upsert_reminder_settings",
		agentID,
		string(d.Type),
		d.IsEnabled,
		d.DaysBefore,
		d.TimeOfDay,
		d.RepeatDaily,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("upsert reminder settings: no row returned")
	}
	return rows[0], nil
}

func (r *PgRepository) GetStatistics(ctx context.Context, agentID uuid.UUID, today string) (rowmap.Row, error) {
	rows, err := r.procs.Call(ctx, "sp_get_reminder_statistics", agentID, dateArg(today))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rowmap.Row{}, nil
	}
	return rows[0], nil
}

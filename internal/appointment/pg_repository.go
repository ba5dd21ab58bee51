package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

type PgRepository struct {
	procs db.Procedures
}

func NewPgRepository(procs db.Procedures) *PgRepository {
	return &PgRepository{procs: procs}
}

func dateArg(s string) any {
	if s == "" {
		return nil
	}
	t, err := time.Parse(temporal.DateLayout, s)
	if err != nil {
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

func optEnum[T ~string](p *T) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func (r *PgRepository) GetByID(ctx context.Context, agentID, id uuid.UUID) (rowmap.Row, error) {
	rows, err := r.procs.Call(ctx, "sp_get_appointment_by_id", agentID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("appointment")
	}
	return rows[0], nil
}

func (r *PgRepository) List(ctx context.Context, agentID uuid.UUID, f ListFilter) ([]rowmap.Row, error) {
	var status any
	if f.Status != "" {
		status = string(f.Status)
	}
	return r.procs.Call(ctx, "sp_get_appointments",
		agentID,
		status,
		dateArg(f.StartDate),
		dateArg(f.EndDate),
		f.PageNumber,
		f.PageSize,
	)
}

func (r *PgRepository) Search(ctx context.Context, agentID uuid.UUID, term string) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_search_appointments", agentID, term)
}

func (r *PgRepository) ListForDate(ctx context.Context, agentID uuid.UUID, date string) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_appointments_for_date", agentID, dateArg(date))
}

func (r *PgRepository) ListInRange(ctx context.Context, agentID uuid.UUID, start, end string) ([]rowmap.Row, error) {
	return r.procs.Call(ctx, "sp_get_appointments_in_range", agentID, dateArg(start), dateArg(end))
}

func (r *PgRepository) Create(ctx context.Context, agentID uuid.UUID, d Draft) (db.MutationResult, error) {
	return db.Mutate(ctx, r.procs, "sp_create_appointment",
		agentID,
		optUUID(d.ClientID),
		d.ClientName,
		d.ClientPhone,
		d.ClientEmail,
		d.ClientAddress,
		d.Title,
		d.Description,
		dateArg(d.Date),
		d.StartTime,
		d.EndTime,
		d.Location,
		string(d.Type),
		string(d.Priority),
		d.Notes,
		d.ReminderSet,
	)
}

func (r *PgRepository) Update(ctx context.Context, agentID, id uuid.UUID, p Patch) (db.MutationResult, error) {
	var date any
	if p.Date != nil {
		date = dateArg(*p.Date)
	}
	return db.Mutate(ctx, r.procs, "sp_update_appointment",
		agentID,
		id,
		p.ClientName,
		p.ClientPhone,
		p.ClientEmail,
		p.ClientAddress,
		p.Title,
		p.Description,
		date,
		p.StartTime,
		p.EndTime,
		p.Location,
		optEnum(p.Type),
		optEnum(p.Status),
		optEnum(p.Priority),
		p.Notes,
		p.ReminderSet,
	)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, agentID, id uuid.UUID, status Status) (db.MutationResult, error) {
	return db.Mutate(ctx, r.procs, "sp_update_appointment_status", agentID, id, string(status))
}

func (r *PgRepository) Delete(ctx context.Context, agentID, id uuid.UUID) (db.MutationResult, error) {
	return db.Mutate(ctx, r.procs, "sp_delete_appointment", agentID, id)
}

func (r *PgRepository) ValidatePhone(ctx context.Context, agentID uuid.UUID, phone string) (rowmap.Row, error) {
	rows, err := r.procs.Call(ctx, "sp_validate_phone_number", agentID, phone)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rowmap.Row{}, nil
	}
	return rows[0], nil
}

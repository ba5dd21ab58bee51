package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Arguments are canonical HH:MM:SS strings, which
// order the same way lexically and chronologically. Touching endpoints do
// not overlap, and an empty interval overlaps nothing.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	if aStart >= aEnd || bStart >= bEnd {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// ConflictError rejects a write whose window overlaps existing appointments.
// It carries the full check result for the caller.
type ConflictError struct {
	Result ConflictResult
}

func (e *ConflictError) Error() string {
	return e.Result.Message
}

func (e *ConflictError) Unwrap() error {
	return apperr.ErrConflict
}

// CheckConflicts validates and normalizes the candidate window, then looks
// for active appointments of the agent on the same date that overlap it.
func (s *Service) CheckConflicts(ctx context.Context, agentID uuid.UUID, q ConflictQuery) (*ConflictResult, error) {
	date := temporal.NormalizeDateToISODate(q.Date)
	if date == "" {
		return nil, apperr.Validation("appointmentDate", "is required")
	}
	if !temporal.IsValidDate(date) {
		return nil, apperr.Validation("appointmentDate", "must be a valid date")
	}

	start := temporal.NormalizeTime(q.StartTime)
	if start == nil {
		return nil, apperr.Validation("startTime", "must be a valid time")
	}
	end := temporal.NormalizeTime(q.EndTime)
	if end == nil {
		return nil, apperr.Validation("endTime", "must be a valid time")
	}
	if *end <= *start {
		return nil, apperr.Validation("endTime", "must be after startTime")
	}

	var exclude *uuid.UUID
	if q.ExcludeAppointmentID != nil {
		raw := strings.TrimSpace(*q.ExcludeAppointmentID)
		if raw != "" && raw != "null" && raw != "undefined" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, apperr.Validation("excludeAppointmentId", "must be a valid UUID")
			}
			exclude = &id
		}
	}

	return s.checkWindow(ctx, agentID, date, *start, *end, exclude)
}

// checkWindow runs the overlap test on already-normalized values.
func (s *Service) checkWindow(ctx context.Context, agentID uuid.UUID, date, start, end string, exclude *uuid.UUID) (*ConflictResult, error) {
	rows, err := s.repo.ListForDate(ctx, agentID, date)
	if err != nil {
		return nil, fmt.Errorf("load appointments for %s: %w", date, err)
	}

	conflicts := make([]Appointment, 0)
	for _, a := range MapAppointments(rows) {
		if !a.IsActive {
			continue
		}
		if a.Date != "" && a.Date != date {
			continue
		}
		if exclude != nil && sameID(a.AppointmentID, *exclude) {
			continue
		}
		// rows without a full window cannot be placed on the timeline
		if a.StartTime == nil || a.EndTime == nil {
			continue
		}
		if Overlaps(start, end, *a.StartTime, *a.EndTime) {
			conflicts = append(conflicts, a)
		}
	}

	res := &ConflictResult{
		HasConflicts:            len(conflicts) > 0,
		ConflictingAppointments: conflicts,
		Message:                 "No conflicts found",
	}
	if res.HasConflicts {
		res.Message = fmt.Sprintf("Found %d conflicting appointment(s)", len(conflicts))
	}
	s.metrics.ConflictCheck(res.HasConflicts)
	return res, nil
}

func sameID(raw string, id uuid.UUID) bool {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return strings.EqualFold(raw, id.String())
	}
	return parsed == id
}

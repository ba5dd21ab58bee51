package reminder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100

	// horizons used by the unfiltered total
	countPolicyExpiryDays = 30
	countBirthdayDays     = 7
)

// List returns one page of reminders. When type, status, priority or client
// narrow the request the filtered procedure is used and its embedded count is
// the total. Otherwise the unfiltered procedure supplies the rows and the total
// is the sum of the four reminder sources, which may differ from the number of
// rows the unfiltered procedure can actually page through.
func (s *Service) List(ctx context.Context, agentID uuid.UUID, f Filter) (*Page, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"agent_id": agentID,
		"page":     f.PageNumber,
		"size":     f.PageSize,
	})

	if f.UsesFilteredPath() {
		log.Debug("listing reminders via filtered path")

		rows, err := s.repo.ListFiltered(ctx, agentID, f)
		if err != nil {
			return nil, fmt.Errorf("list filtered reminders: %w", err)
		}
		reminders := MapReminders(rows)

		var total int64
		if len(reminders) > 0 {
			total = reminders[0].totalRecords
		}
		return newPage(reminders, total, f), nil
	}

	log.Debug("listing reminders via unfiltered path")

	rows, err := s.repo.ListUnfiltered(ctx, agentID, f)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}

	counts, err := s.SourceCounts(ctx, agentID)
	if err != nil {
		return nil, err
	}

	return newPage(MapReminders(rows), counts.Total(), f), nil
}

// SourceCounts runs the four reminder-source counts in parallel.
func (s *Service) SourceCounts(ctx context.Context, agentID uuid.UUID) (SourceCounts, error) {
	var c SourceCounts
	birthdays := BirthdayWindow(s.today(), countBirthdayDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountAgentReminders(gctx, agentID)
		if err != nil {
			return fmt.Errorf("count reminders: %w", err)
		}
		c.Reminders = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountExpiringPolicies(gctx, agentID, countPolicyExpiryDays)
		if err != nil {
			return fmt.Errorf("count expiring policies: %w", err)
		}
		c.PolicyExpiries = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountBirthdaysOn(gctx, agentID, birthdays)
		if err != nil {
			return fmt.Errorf("count upcoming birthdays: %w", err)
		}
		c.Birthdays = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountActiveAppointments(gctx, agentID)
		if err != nil {
			return fmt.Errorf("count active appointments: %w", err)
		}
		c.Appointments = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return SourceCounts{}, err
	}
	return c, nil
}

// TotalPages is ceil(total/size), with zero pages for zero records.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func newPage(reminders []Reminder, total int64, f Filter) *Page {
	return &Page{
		Reminders:    reminders,
		TotalRecords: total,
		CurrentPage:  f.PageNumber,
		TotalPages:   TotalPages(total, f.PageSize),
		PageSize:     f.PageSize,
	}
}

func normalizeFilter(f Filter) (Filter, error) {
	if f.PageNumber == 0 {
		f.PageNumber = DefaultPageNumber
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageNumber < 1 {
		return f, apperr.Validation("PageNumber", "must be a positive integer")
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		return f, apperr.Validation("PageSize", "must be between 1 and %d", MaxPageSize)
	}

	if f.Type != "" && !f.Type.Valid() {
		return f, apperr.Validation("ReminderType", "unknown reminder type %q", f.Type)
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, apperr.Validation("Status", "unknown status %q", f.Status)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return f, apperr.Validation("Priority", "unknown priority %q", f.Priority)
	}

	f.StartDate = temporal.NormalizeDateToISODate(f.StartDate)
	f.EndDate = temporal.NormalizeDateToISODate(f.EndDate)
	if f.StartDate != "" && !temporal.IsValidDate(f.StartDate) {
		return f, apperr.Validation("StartDate", "must be a valid date")
	}
	if f.EndDate != "" && !temporal.IsValidDate(f.EndDate) {
		return f, apperr.Validation("EndDate", "must be a valid date")
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return f, apperr.Validation("EndDate", "must not be before StartDate")
	}

	return f, nil
}

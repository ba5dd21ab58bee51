package appointment

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

// StartOfWeek returns the Sunday on or before day.
func StartOfWeek(day time.Time) time.Time {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// WeekView returns seven consecutive days starting at weekStart (default:
// the current week's Sunday). Every day is present, with an empty list when
// nothing is booked.
func (s *Service) WeekView(ctx context.Context, agentID uuid.UUID, weekStart string) ([]WeekDay, error) {
	var start time.Time
	if strings.TrimSpace(weekStart) == "" {
		start = StartOfWeek(s.today())
	} else {
		t, err := temporal.ParseDate(weekStart, s.loc)
		if err != nil {
			return nil, apperr.Validation("weekStart", "must be a valid date")
		}
		start = t
	}
	end := start.AddDate(0, 0, 6)

	rows, err := s.repo.ListInRange(ctx, agentID, start.Format(temporal.DateLayout), end.Format(temporal.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("load week appointments: %w", err)
	}
	byDate := groupByDate(MapAppointments(rows))

	days := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		key := d.Format(temporal.DateLayout)
		appts := byDate[key]
		if appts == nil {
			appts = []Appointment{}
		}
		days = append(days, WeekDay{
			Date:         key,
			DayName:      d.Weekday().String(),
			Appointments: appts,
		})
	}
	return days, nil
}

// CalendarView groups one month's appointments by date. Unlike WeekView,
// dates without appointments are left out.
func (s *Service) CalendarView(ctx context.Context, agentID uuid.UUID, month, year string) ([]CalendarDay, error) {
	month, year = strings.TrimSpace(month), strings.TrimSpace(year)
	if month == "" || year == "" {
		return nil, apperr.Validation("", "month and year are required")
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return nil, apperr.Validation("month", "must be a number between 1 and 12")
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return nil, apperr.Validation("year", "must be a valid year")
	}

	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, s.loc)
	last := first.AddDate(0, 1, -1)
	from, to := first.Format(temporal.DateLayout), last.Format(temporal.DateLayout)

	rows, err := s.repo.ListInRange(ctx, agentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load calendar appointments: %w", err)
	}

	byDate := groupByDate(MapAppointments(rows))
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		if date < from || date > to {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]CalendarDay, 0, len(dates))
	for _, date := range dates {
		appts := byDate[date]
		out = append(out, CalendarDay{
			Date:             date,
			Appointments:     appts,
			AppointmentCount: len(appts),
		})
	}
	return out, nil
}

// groupByDate buckets appointments by their YYYY-MM-DD date, each bucket
// ordered by start time. Appointments without a date are dropped.
func groupByDate(appts []Appointment) map[string][]Appointment {
	out := make(map[string][]Appointment)
	for _, a := range appts {
		if a.Date == "" {
			continue
		}
		out[a.Date] = append(out[a.Date], a)
	}
	for date, list := range out {
		out[date] = sortByStart(list)
	}
	return out
}

// sortByStart orders by start time; appointments without one go last.
func sortByStart(appts []Appointment) []Appointment {
	sort.SliceStable(appts, func(i, j int) bool {
		a, b := appts[i].StartTime, appts[j].StartTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return appts
}

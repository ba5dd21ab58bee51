// Package scheduler runs the daily job that hands due auto-send reminders to
// the notification queue.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
	"github.com/hackgods/agent-crm-scheduling/internal/notify"
	"github.com/hackgods/agent-crm-scheduling/internal/reminder"
)

// dedupTTL outlives one day so a restart later the same day does not resend.
const dedupTTL = 36 * time.Hour

type DueReminders interface {
	DueAutoSend(ctx context.Context) ([]reminder.Reminder, error)
	Today() string
}

type OncePublisher interface {
	PublishOnce(ctx context.Context, dedupKey string, ttl time.Duration, msg notify.Message) (bool, error)
}

type ReminderScheduler struct {
	cron      *cron.Cron
	spec      string
	reminders DueReminders
	queue     OncePublisher
	metrics   *metrics.Metrics
	timeout   time.Duration
}

func NewReminderScheduler(reminders DueReminders, queue OncePublisher, m *metrics.Metrics, spec string, loc *time.Location) *ReminderScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderScheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		spec:      spec,
		reminders: reminders,
		queue:     queue,
		metrics:   m,
		timeout:   5 * time.Minute,
	}
}

func (s *ReminderScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		n, err := s.RunOnce(ctx)
		if err != nil {
			logger.Log.WithError(err).Error("auto-send reminder run failed")
			return
		}
		logger.Log.WithField("enqueued", n).Info("auto-send reminder run finished")
	})
	if err != nil {
		return fmt.Errorf("schedule reminder job %q: %w", s.spec, err)
	}

	s.cron.Start()
	logger.Log.WithField("spec", s.spec).Info("reminder scheduler started")
	return nil
}

// Stop stops scheduling and waits for a running job, bounded by ctx.
func (s *ReminderScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	logger.Log.Info("reminder scheduler stopped")
}

// RunOnce enqueues today's auto-send reminders, each at most once per day,
// and returns how many were enqueued.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	due, err := s.reminders.DueAutoSend(ctx)
	if err != nil {
		return 0, err
	}
	today := s.reminders.Today()

	enqueued := 0
	for _, r := range due {
		if r.Status != "" && r.Status != reminder.StatusActive {
			continue
		}
		entry := logger.Log.WithFields(logrus.Fields{
			"agent_id":    r.AgentID,
			"reminder_id": r.ReminderID,
		})

		ok, err := s.queue.PublishOnce(ctx, "reminder:"+r.ReminderID+":"+today, dedupTTL, reminderMessage(r))
		if err != nil {
			s.metrics.NotifyFailure("enqueue")
			entry.WithError(err).Warn("auto-send reminder not queued")
			continue
		}
		if !ok {
			entry.Debug("auto-send reminder already queued today")
			continue
		}
		s.metrics.ReminderQueued()
		enqueued++
	}
	return enqueued, nil
}

func reminderMessage(r reminder.Reminder) notify.Message {
	body := r.CustomMessage
	if strings.TrimSpace(body) == "" {
		var b strings.Builder
		b.WriteString(r.Title)
		if r.Description != "" {
			b.WriteString("\n" + r.Description)
		}
		if r.ReminderTime != nil {
			fmt.Fprintf(&b, "\nTime: %s", *r.ReminderTime)
		}
		body = b.String()
	}

	return notify.Message{
		Kind:      notify.KindReminderDue,
		AgentID:   r.AgentID,
		EntityID:  r.ReminderID,
		Recipient: r.ClientEmail,
		Subject:   fmt.Sprintf("Reminder: %s", r.Title),
		Body:      body,
	}
}

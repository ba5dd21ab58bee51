package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/agent-crm-scheduling/internal/notify"
	"github.com/hackgods/agent-crm-scheduling/internal/reminder"
)

type fakeDue struct {
	list []reminder.Reminder
	err  error
}

func (f fakeDue) DueAutoSend(context.Context) ([]reminder.Reminder, error) { return f.list, f.err }
func (f fakeDue) Today() string { return "2025-03-05" }

// memQueue mimics SETNX dedup in memory.
type memQueue struct {
	claimed map[string]bool
	msgs    []notify.Message
	failFor string
}

func (q *memQueue) PublishOnce(_ context.Context, key string, _ time.Duration, msg notify.Message) (bool, error) {
	if msg.EntityID == q.failFor {
		return false, errors.New("redis: timeout")
	}
	if q.claimed[key] {
		return false, nil
	}
	q.claimed[key] = true
	q.msgs = append(q.msgs, msg)
	return true, nil
}

func TestRunOnce_EnqueuesOncePerDay(t *testing.T) {
	tm := "09:00:00"
	due := fakeDue{list: []reminder.Reminder{
		{ReminderID: "r-1", AgentID: "a-1", Title: "Call Mrs. Osei", ReminderTime: &tm, Status: reminder.StatusActive, ClientEmail: "osei@example.com"},
		{ReminderID: "r-2", AgentID: "a-1", Title: "Renewal", CustomMessage: "Your policy renews soon"},
		{ReminderID: "r-3", AgentID: "a-1", Title: "Done already", Status: reminder.StatusCompleted},
		{ReminderID: "r-4", AgentID: "a-2", Title: "Broken"},
	}}
	q := &memQueue{claimed: map[string]bool{}, failFor: "r-4"}
	s := NewReminderScheduler(due, q, nil, "0 8 * * *", time.UTC)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, q.msgs, 2)

	assert.Equal(t, notify.KindReminderDue, q.msgs[0].Kind)
	assert.Equal(t, "Reminder: Call Mrs. Osei", q.msgs[0].Subject)
	assert.Equal(t, "osei@example.com", q.msgs[0].Recipient)
	assert.Contains(t, q.msgs[0].Body, "Time: 09:00:00")
	assert.Equal(t, "Your policy renews soon", q.msgs[1].Body)
	assert.True(t, q.claimed["reminder:r-1:2025-03-05"])

	n, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "second run the same day enqueues nothing")
}

func TestRunOnce_ListFailure(t *testing.T) {
	s := NewReminderScheduler(fakeDue{err: errors.New("db down")}, &memQueue{claimed: map[string]bool{}}, nil, "@daily", nil)
	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := NewReminderScheduler(fakeDue{}, &memQueue{}, nil, "every morning", time.UTC)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewReminderScheduler(fakeDue{}, &memQueue{claimed: map[string]bool{}}, nil, "@every 1h", time.UTC)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

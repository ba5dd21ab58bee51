package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
)

// sliceSource hands out queued messages, then cancels the run.
type sliceSource struct {
	mu     sync.Mutex
	msgs   []*Message
	errs   []error
	cancel context.CancelFunc
}

func (s *sliceSource) Pop(context.Context, time.Duration) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	if len(s.msgs) == 0 {
		s.cancel()
		return nil, context.Canceled
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	fail map[string]bool
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[msg.ID] {
		return errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestConsumer_DeliversAndSurvivesFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &sliceSource{
		msgs:   []*Message{{ID: "1"}, nil, {ID: "2"}, {ID: "3"}},
		errs:   []error{errors.New("redis: connection reset")},
		cancel: cancel,
	}
	sender := &recordingSender{fail: map[string]bool{"2": true}}

	c := NewConsumer(src, sender, metrics.MustNew(prometheus.NewRegistry()))
	c.backoff = time.Millisecond

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}

	ids := make([]string, 0, len(sender.sent))
	for _, m := range sender.sent {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"1", "3"}, ids)
}

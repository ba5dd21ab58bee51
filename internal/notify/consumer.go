package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hackgods/agent-crm-scheduling/internal/logger"
	"github.com/hackgods/agent-crm-scheduling/internal/metrics"
)

// Source yields queued notifications; *Queue implements it.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*Message, error)
}

// Consumer drains a Source into a Sender. Delivery failures are logged and
// the message dropped.
type Consumer struct {
	source  Source
	sender  Sender
	metrics *metrics.Metrics
	wait    time.Duration
	backoff time.Duration
}

func NewConsumer(source Source, sender Sender, m *metrics.Metrics) *Consumer {
	return &Consumer{
		source:  source,
		sender:  sender,
		metrics: m,
		wait:    5 * time.Second,
		backoff: time.Second,
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	logger.Log.Info("notification consumer started")
	for {
		if ctx.Err() != nil {
			logger.Log.Info("notification consumer stopping")
			return
		}

		msg, err := c.source.Pop(ctx, c.wait)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Log.WithError(err).Warn("notification dequeue failed")
			select {
			case <-ctx.Done():
			case <-time.After(c.backoff):
			}
			continue
		}
		if msg == nil {
			continue
		}

		c.deliver(ctx, *msg)
	}
}

func (c *Consumer) deliver(ctx context.Context, msg Message) {
	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	entry := logger.Log.WithFields(logrus.Fields{
		"notification_id": msg.ID,
		"kind":            msg.Kind,
		"agent_id":        msg.AgentID,
	})
	if err := c.sender.Send(sendCtx, msg); err != nil {
		c.metrics.NotifyFailure("deliver")
		entry.WithError(err).Error("notification delivery failed")
		return
	}
	entry.Debug("notification delivered")
}

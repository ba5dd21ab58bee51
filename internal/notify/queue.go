package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Queue is a FIFO of notifications backed by a Redis list: LPUSH on publish,
// BRPOP on consume.
type Queue struct {
	client redis.Cmdable
	key    string
}

func NewQueue(client redis.Cmdable, key string) *Queue {
	return &Queue{client: client, key: key}
}

func (q *Queue) Publish(ctx context.Context, msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	raw, err := msg.encode()
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// PublishOnce enqueues msg unless dedupKey was already claimed within ttl.
// It reports whether the message was enqueued.
func (q *Queue) PublishOnce(ctx context.Context, dedupKey string, ttl time.Duration, msg Message) (bool, error) {
	ok, err := q.client.SetNX(ctx, "notify:dedup:"+dedupKey, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim dedup key: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := q.Publish(ctx, msg); err != nil {
		// release the claim so the next run can retry
		_ = q.client.Del(ctx, "notify:dedup:"+dedupKey).Err()
		return false, err
	}
	return true, nil
}

// Pop blocks up to timeout for the next message. It returns nil, nil when the
// wait elapsed without a message.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*Message, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue notification: %w", err)
	}
	// res is [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue notification: unexpected reply %v", res)
	}
	m, err := decode(res[1])
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

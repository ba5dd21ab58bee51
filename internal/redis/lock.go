package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/agent-crm-scheduling/internal/logger"
)

// ErrLockNotAcquired means another booking for the same agent and day held
// the lock for longer than the configured wait.
var ErrLockNotAcquired = errors.New("booking lock not acquired")

// Locker serializes the conflict check and the write of bookings that land
// on the same agent's calendar day.
type Locker interface {
	WithBookingLock(ctx context.Context, agentID uuid.UUID, date string, fn func(ctx context.Context) error) error
}

// NoopLocker runs fn directly. Two bookings of the same window racing each
// other can both be accepted.
type NoopLocker struct{}

func (NoopLocker) WithBookingLock(ctx context.Context, _ uuid.UUID, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// lockClient is the part of the Redis API the booking lock needs.
type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// releaseBooking deletes the day key only while it still carries our token,
// so a holder whose TTL lapsed cannot free a later holder's lock.
const releaseBooking = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const lockPollInterval = 25 * time.Millisecond

// BookingLock holds lock:booking:<agent>:<date> for the duration of fn.
// Callers queue behind the current holder for up to wait before giving up.
type BookingLock struct {
	client lockClient
	ttl    time.Duration
	wait   time.Duration
}

func NewBookingLock(client lockClient, ttl, wait time.Duration) *BookingLock {
	return &BookingLock{client: client, ttl: ttl, wait: wait}
}

func BookingLockKey(agentID uuid.UUID, date string) string {
	return fmt.Sprintf("lock:booking:%s:%s", agentID, date)
}

func (l *BookingLock) WithBookingLock(ctx context.Context, agentID uuid.UUID, date string, fn func(ctx context.Context) error) error {
	key := BookingLockKey(agentID, date)
	owner := uuid.NewString()

	if err := l.acquire(ctx, key, owner); err != nil {
		return err
	}
	defer l.release(context.WithoutCancel(ctx), key, owner)

	// fn must finish before the key expires under it
	held, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(held)
}

func (l *BookingLock) acquire(ctx context.Context, key, owner string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (l *BookingLock) release(ctx context.Context, key, owner string) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := l.client.Eval(ctx, releaseBooking, []string{key}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		logger.Log.WithError(err).WithField("key", key).Warn("release booking lock; key expires after ttl")
	}
}

package redisclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/agent-crm-scheduling/internal/config"
)

func TestNewLocker_DisabledByDefault(t *testing.T) {
	l := NewLocker(nil, config.Config{})
	assert.IsType(t, NoopLocker{}, l)

	l = NewLocker(nil, config.Config{BookingLockEnabled: true})
	assert.IsType(t, NoopLocker{}, l, "no client means no lock")

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()
	l = NewLocker(rdb, config.Config{BookingLockEnabled: true, LockTTL: time.Second})
	assert.IsType(t, &BookingLock{}, l)
}

func TestNoopLocker_RunsFn(t *testing.T) {
	ran := false
	err := NoopLocker{}.WithBookingLock(context.Background(), uuid.New(), "2025-03-01", func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestBookingLockKey(t *testing.T) {
	id := uuid.MustParse("6f1c1d2e-0000-4000-8000-000000000001")
	assert.Equal(t, "lock:booking:6f1c1d2e-0000-4000-8000-000000000001:2025-03-01", BookingLockKey(id, "2025-03-01"))
}

// memLocks keeps SETNX keys in memory and runs the release script's
// compare-and-delete in Go.
type memLocks struct {
	mu     sync.Mutex
	keys   map[string]string
	setErr error
}

func newMemLocks() *memLocks {
	return &memLocks{keys: make(map[string]string)}
}

func (m *memLocks) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return redis.NewBoolResult(false, m.setErr)
	}
	if _, held := m.keys[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	m.keys[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (m *memLocks) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[keys[0]] != args[0].(string) {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(m.keys, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}

func (m *memLocks) owner(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.keys[key]
	return v, ok
}

func (m *memLocks) set(key, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = owner
}

func (m *memLocks) drop(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
}

var (
	lockAgent = uuid.MustParse("6f1c1d2e-0000-4000-8000-000000000001")
	lockDate  = "2025-03-01"
)

func TestBookingLock_HoldsKeyWhileFnRuns(t *testing.T) {
	mem := newMemLocks()
	l := NewBookingLock(mem, time.Second, 50*time.Millisecond)
	key := BookingLockKey(lockAgent, lockDate)

	err := l.WithBookingLock(context.Background(), lockAgent, lockDate, func(ctx context.Context) error {
		_, held := mem.owner(key)
		assert.True(t, held)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	require.NoError(t, err)

	_, held := mem.owner(key)
	assert.False(t, held, "released after fn")
}

func TestBookingLock_ReturnsFnError(t *testing.T) {
	mem := newMemLocks()
	l := NewBookingLock(mem, time.Second, 50*time.Millisecond)
	boom := errors.New("write failed")

	err := l.WithBookingLock(context.Background(), lockAgent, lockDate, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, held := mem.owner(BookingLockKey(lockAgent, lockDate))
	assert.False(t, held)
}

func TestBookingLock_GivesUpAfterWait(t *testing.T) {
	mem := newMemLocks()
	key := BookingLockKey(lockAgent, lockDate)
	mem.set(key, "other-booking")
	l := NewBookingLock(mem, time.Second, 60*time.Millisecond)

	ran := false
	began := time.Now()
	err := l.WithBookingLock(context.Background(), lockAgent, lockDate, func(context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.False(t, ran)
	assert.GreaterOrEqual(t, time.Since(began), 60*time.Millisecond)

	owner, _ := mem.owner(key)
	assert.Equal(t, "other-booking", owner)
}

func TestBookingLock_WaitsForHolder(t *testing.T) {
	mem := newMemLocks()
	key := BookingLockKey(lockAgent, lockDate)
	mem.set(key, "other-booking")
	l := NewBookingLock(mem, time.Second, 2*time.Second)

	go func() {
		time.Sleep(50 * time.Millisecond)
		mem.drop(key)
	}()

	ran := false
	err := l.WithBookingLock(context.Background(), lockAgent, lockDate, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestBookingLock_DayKeysAreIndependent(t *testing.T) {
	mem := newMemLocks()
	mem.set(BookingLockKey(lockAgent, "2025-03-02"), "other-booking")
	l := NewBookingLock(mem, time.Second, 0)

	err := l.WithBookingLock(context.Background(), lockAgent, lockDate, func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestBookingLock_KeepsKeyTakenOverAfterExpiry(t *testing.T) {
	mem := newMemLocks()
	key := BookingLockKey(lockAgent, lockDate)
	l := NewBookingLock(mem, time.Second, 0)

	err := l.WithBookingLock(context.Background(), lockAgent, lockDate, func(context.Context) error {
		// our ttl lapsed and another booking now owns the day
		mem.set(key, "later-booking")
		return nil
	})
	require.NoError(t, err)

	owner, held := mem.owner(key)
	assert.True(t, held)
	assert.Equal(t, "later-booking", owner)
}

func TestBookingLock_CancelledWhileWaiting(t *testing.T) {
	mem := newMemLocks()
	mem.set(BookingLockKey(lockAgent, lockDate), "other-booking")
	l := NewBookingLock(mem, time.Second, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	err := l.WithBookingLock(ctx, lockAgent, lockDate, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBookingLock_RedisError(t *testing.T) {
	mem := newMemLocks()
	mem.setErr = errors.New("connection refused")
	l := NewBookingLock(mem, time.Second, time.Second)

	err := l.WithBookingLock(context.Background(), lockAgent, lockDate, func(context.Context) error { return nil })
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockNotAcquired)
	assert.Contains(t, err.Error(), "connection refused")
}

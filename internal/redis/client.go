package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/agent-crm-scheduling/internal/config"
)

// NewRedisClient connects with the credentials from cfg and verifies the
// connection before returning.
func NewRedisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}

	return rdb, nil
}

// NewLocker returns the Redis booking locker when enabled in cfg and the
// pass-through locker otherwise.
func NewLocker(client redis.Cmdable, cfg config.Config) Locker {
	if !cfg.BookingLockEnabled || client == nil {
		return NoopLocker{}
	}
	return NewBookingLock(client, cfg.LockTTL, cfg.LockWait)
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/agent-crm-scheduling/internal/config"
)

// ConnectPostgres opens the pool the procedure caller borrows from and checks
// it answers before any request is served. app shows up as application_name
// in pg_stat_activity.
func ConnectPostgres(ctx context.Context, cfg config.Config, app string) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg, app)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// poolConfig sizes the pool from cfg and pins the session timezone to the
// reference timezone, so CURRENT_DATE inside the stored procedures is the
// same day the services compute.
func poolConfig(cfg config.Config, app string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}

	if cfg.PostgresMaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.PostgresMaxConns)
	}
	if cfg.PostgresMinConns >= 0 && int32(cfg.PostgresMinConns) <= poolCfg.MaxConns {
		poolCfg.MinConns = int32(cfg.PostgresMinConns)
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.MaxConnIdleTime = 15 * time.Minute

	params := poolCfg.ConnConfig.RuntimeParams
	if app != "" {
		params["application_name"] = app
	}
	if cfg.Timezone != nil {
		params["timezone"] = cfg.Timezone.String()
	}
	return poolCfg, nil
}

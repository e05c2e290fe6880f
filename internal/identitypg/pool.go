package identitypg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Token traffic is bursty (signup storms) but each query is a single-row
// insert or delete, so a small pool with aggressive recycling is enough.
const (
	poolMinConnections    = 1
	poolMaxConnections    = 8
	poolConnLifetime      = 30 * time.Minute
	poolHealthCheckPeriod = 30 * time.Second
)

// BuildPool parses the database URL and opens a pgx pool sized for the
// one-time token workload. Callers own the pool and must Close it.
func BuildPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, parseErr := pgxpool.ParseConfig(databaseURL)
	if parseErr != nil {
		return nil, fmt.Errorf("identitypg.parse_config: %w", parseErr)
	}
	poolConfig.MinConns = poolMinConnections
	poolConfig.MaxConns = poolMaxConnections
	poolConfig.MaxConnLifetime = poolConnLifetime
	poolConfig.HealthCheckPeriod = poolHealthCheckPeriod

	pool, newErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if newErr != nil {
		return nil, fmt.Errorf("identitypg.new_pool: %w", newErr)
	}
	return pool, nil
}

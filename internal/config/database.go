package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPoolConfig builds the pgxpool configuration for the document store. The pool
// is never smaller than the number of ingest workers.
func (c *Config) PgxPoolConfig() (*pgxpool.Config, error) {
	dbConfig, err := c.ParseDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(dbConfig.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = max(dbConfig.MaxConns, int32(c.Workers))
	poolConfig.MinConns = dbConfig.MinConns
	poolConfig.MaxConnLifetime = dbConfig.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = c.Pool.ConnectTimeout
	return poolConfig, nil
}

// NewDatabasePool creates the PostgreSQL connection pool and checks that the
// database answers within pool.connect_timeout
func NewDatabasePool(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	poolConfig, err := config.PgxPoolConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.Pool.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Package db opens the relational store: a pgxpool-backed Postgres database
// or a local SQLite file, both exposed as *sql.DB so one store
// implementation serves either.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/rinkstats/siahl/internal/config"
)

// Driver names the backend behind a DB.
type Driver string

const (
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
)

// DB wraps *sql.DB with the backend it talks to.
type DB struct {
	*sql.DB
	Driver Driver
	pool   *pgxpool.Pool
}

// PoolOptions sizes the Postgres pool.
type PoolOptions struct {
	MinConns    int
	MaxConns    int
	MaxConnLife time.Duration
}

// Open connects using the configured DATABASE_URL.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	return OpenURL(ctx, cfg.DatabaseURL, PoolOptions{
		MinConns:    cfg.DBPoolMinConns,
		MaxConns:    cfg.DBPoolMaxConns,
		MaxConnLife: cfg.DBPoolMaxLife,
	})
}

// OpenURL connects to postgres://, postgresql://, sqlite:// or file: URLs.
func OpenURL(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return openPostgres(ctx, databaseURL, opts)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return openSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "file:"):
		return openSQLite(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %q", databaseURL)
	}
}

func openPostgres(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if opts.MinConns > 0 {
		poolCfg.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConns > 0 {
		poolCfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.MaxConnLife > 0 {
		poolCfg.MaxConnLifetime = opts.MaxConnLife
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Prepare(ctx, "health_check", "SELECT 1")
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: stdlib.OpenDBFromPool(pool), Driver: Postgres, pool: pool}, nil
}

func openSQLite(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}
	dsn := path
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=busy_timeout(5000)&_txlock=immediate"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; keeps :memory: databases on a single connection too.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &DB{DB: sqlDB, Driver: SQLite}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (d *DB) HealthCheck(ctx context.Context) error {
	var n int
	if d.pool != nil {
		return d.pool.QueryRow(ctx, "health_check").Scan(&n)
	}
	return d.QueryRowContext(ctx, "SELECT 1").Scan(&n)
}

// Close releases the database and, for Postgres, the pool under it.
func (d *DB) Close() error {
	err := d.DB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

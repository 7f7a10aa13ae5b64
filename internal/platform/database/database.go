// Package database manages the PostgreSQL pool and the table that stores
// notes bundles.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 10 * time.Second

// Schema creates the notes_bundles table read by the postgres notes source.
const Schema = `CREATE TABLE IF NOT EXISTS notes_bundles (
	name       text PRIMARY KEY,
	body       text NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

const upsertBundle = `INSERT INTO notes_bundles (name, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// Bundle is one stored bundle document.
type Bundle struct {
	Name string
	Body []byte
}

// ParseURL validates a PostgreSQL connection URL.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	return cfg, nil
}

// New opens a pool and checks that the server answers.
func New(ctx context.Context, url string, maxConns, minConns int) (*DB, error) {
	cfg, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = int32(minConns)
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Migrate creates the notes_bundles table if it is missing.
func (db *DB) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := db.Pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating notes_bundles: %w", err)
	}
	return nil
}

// PutBundles stores bundles in one transaction, replacing any with the same
// name. Either every bundle is written or none is.
func (db *DB) PutBundles(ctx context.Context, bundles []Bundle) error {
	for _, b := range bundles {
		if b.Name == "" {
			return errors.New("bundle name is empty")
		}
		if len(b.Body) == 0 {
			return fmt.Errorf("bundle %s is empty", b.Name)
		}
	}
	if len(bundles) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, b := range bundles {
			if _, err := tx.Exec(ctx, upsertBundle, b.Name, string(b.Body)); err != nil {
				return fmt.Errorf("writing bundle %s: %w", b.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing notes bundles: %w", err)
	}

	slog.Info("notes bundles stored", "bundles", len(bundles))
	return nil
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

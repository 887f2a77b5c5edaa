package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hos-compliance-service/internal/platform/db"
)

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS duty_events (
		driver_id   TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		interval_id TEXT NOT NULL DEFAULT '',
		target_id   TEXT,
		status      TEXT NOT NULL DEFAULT '',
		at          TEXT NOT NULL DEFAULT '',
		end_at      TEXT,
		location    TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT '',
		recorded_at TEXT NOT NULL,
		PRIMARY KEY (driver_id, seq)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
	ON distance_cache(destination, origin);
	`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS duty_events (
		driver_id   TEXT NOT NULL,
		seq         BIGINT NOT NULL,
		kind        TEXT NOT NULL,
		interval_id UUID,
		target_id   UUID,
		status      TEXT NOT NULL DEFAULT '',
		at          TIMESTAMPTZ,
		end_at      TIMESTAMPTZ,
		location    TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (driver_id, seq)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
	ON distance_cache(destination, origin);
	`,
}

// Initialize the database schema for the given dialect.
func InitSchema(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	statements := sqliteSchema
	if dialect == db.DialectPostgres {
		statements = postgresSchema
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema %s: exec statement #%d: %w", dialect, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

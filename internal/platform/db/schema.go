package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Statements are portable between SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		name TEXT PRIMARY KEY,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		duration_minutes INTEGER NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		period TEXT NOT NULL DEFAULT '',
		hours_json TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS travel_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);`,
	`CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_travel_cache_destination_origin
		ON travel_cache(destination, origin);`,
}

// InitSchema creates the tables if they do not exist.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	// Catalogs created before the period column existed.
	if _, err := conn.ExecContext(ctx, `SELECT period FROM locations LIMIT 0;`); err != nil {
		if _, err := conn.ExecContext(ctx, `ALTER TABLE locations ADD COLUMN period TEXT NOT NULL DEFAULT '';`); err != nil {
			return fmt.Errorf("init schema: add locations.period: %w", err)
		}
	}
	return nil
}

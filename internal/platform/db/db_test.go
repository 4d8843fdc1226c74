package db

import (
	"context"
	"testing"
)

func TestDialectPlaceholders(t *testing.T) {
	if got := Postgres.Placeholders(2, 3); got != "$2, $3, $4" {
		t.Fatalf("postgres placeholders: got %q", got)
	}
	if got := SQLite.Placeholders(2, 3); got != "?, ?, ?" {
		t.Fatalf("sqlite placeholders: got %q", got)
	}
	if got := Postgres.Placeholder(1); got != "$1" {
		t.Fatalf("postgres placeholder: got %q", got)
	}
}

func TestOpenSQLiteInMemory(t *testing.T) {
	conn, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	var n int
	if err := conn.QueryRow("SELECT 1").Scan(&n); err != nil || n != 1 {
		t.Fatalf("query: n=%d err=%v", n, err)
	}
}

func TestInitSchemaAddsPeriodColumn(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `CREATE TABLE locations (
		name TEXT PRIMARY KEY, rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		lat DOUBLE PRECISION NOT NULL, lon DOUBLE PRECISION NOT NULL,
		duration_minutes INTEGER NOT NULL, label TEXT NOT NULL DEFAULT '',
		hours_json TEXT NOT NULL DEFAULT '');`); err != nil {
		t.Fatalf("create old table: %v", err)
	}

	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	// Idempotent on an up-to-date schema.
	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("second init schema: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `SELECT period FROM locations LIMIT 0;`); err != nil {
		t.Fatalf("expected period column: %v", err)
	}
}

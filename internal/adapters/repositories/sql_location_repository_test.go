package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/db"
)

const seedDoc = `[
	{"name": "Taipei 101", "rating": 4.6, "lat": 25.034, "lon": 121.5645, "duration": 90, "label": "landmark", "hours": "09:00-22:00"},
	{"name": "Din Tai Fung", "rating": 4.4, "lat": 25.0336, "lon": 121.5300, "duration": 60, "label": "restaurant", "period": "Dinner",
	 "hours": {"1": [{"open": "11:00", "close": "14:00"}, {"open": "17:00", "close": "21:00"}],
	           "2": [], "3": [], "4": [], "5": [], "6": [], "7": []}}
]`

func newTestRepo(t *testing.T) *SQLLocationRepository {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.InitSchema(context.Background(), conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSQLLocationRepository(conn, db.SQLite)
}

func TestSeedAndListLocations(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seedDoc), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	n, err := SeedFromJSON(ctx, repo, path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 seeded, got %d", n)
	}

	locs, err := repo.ListLocations(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locs))
	}
	// Ordered by name.
	if locs[0].Name != "Din Tai Fung" || locs[1].Name != "Taipei 101" {
		t.Fatalf("unexpected order: %q, %q", locs[0].Name, locs[1].Name)
	}
	if len(locs[0].Hours[1]) != 2 || len(locs[0].Hours[2]) != 0 {
		t.Fatalf("unexpected hours: %+v", locs[0].Hours)
	}
	if err := locs[1].Validate(); err != nil {
		t.Fatalf("round-tripped location invalid: %v", err)
	}
	if locs[0].Period != domain.PeriodDinner || locs[1].Period != "" {
		t.Fatalf("unexpected periods: %q, %q", locs[0].Period, locs[1].Period)
	}
}

func TestListLocationsUnreadableHours(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.DB.ExecContext(ctx, `INSERT INTO locations (name, rating, lat, lon, duration_minutes, label, hours_json)
		VALUES ('Broken', 4, 25.0, 121.5, 30, '', 'not json')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	locs, err := repo.ListLocations(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(locs) != 1 || locs[0].Hours != nil {
		t.Fatalf("expected nil hours for unreadable row, got %+v", locs)
	}
	if err := locs[0].Validate(); !errors.Is(err, domain.ErrMalformedHours) {
		t.Fatalf("expected malformed hours error, got %v", err)
	}
}

func TestParseSeedRejectsDuplicates(t *testing.T) {
	doc := `[
		{"name": "A", "rating": 4, "lat": 25, "lon": 121, "duration": 30, "hours": "24 hours"},
		{"name": "A", "rating": 3, "lat": 25, "lon": 121, "duration": 30, "hours": "24 hours"}
	]`
	if _, err := ParseSeed([]byte(doc)); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestParseSeedRejectsUnknownPeriod(t *testing.T) {
	doc := `[{"name": "A", "rating": 4, "lat": 25, "lon": 121, "duration": 30, "period": "brunch", "hours": "24 hours"}]`
	if _, err := ParseSeed([]byte(doc)); err == nil {
		t.Fatalf("expected unknown period error")
	}
}

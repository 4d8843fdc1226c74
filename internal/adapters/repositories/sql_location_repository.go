package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/obs"
)

// SQLLocationRepository implements the LocationRepository port on the
// locations table.
type SQLLocationRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLLocationRepository(conn *sql.DB, dialect db.Dialect) *SQLLocationRepository {
	return &SQLLocationRepository{DB: conn, Dialect: dialect}
}

// ListLocations returns the catalog ordered by name. Rows whose stored hours
// cannot be decoded come back with nil hours; the planner excludes them with
// a warning.
func (s *SQLLocationRepository) ListLocations(ctx context.Context) (_ []*domain.Location, err error) {
	defer obs.Time(ctx, "locations.List")(&err)

	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT name, rating, lat, lon, duration_minutes, label, period, hours_json
	FROM locations
	ORDER BY name;
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0, 64)
	for rows.Next() {
		var (
			loc    domain.Location
			period string
			hours  string
		)
		if err := rows.Scan(&loc.Name, &loc.Rating, &loc.Position.Lat, &loc.Position.Lon,
			&loc.Duration, &loc.Label, &period, &hours); err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}
		loc.Period = domain.DayPeriod(period)
		if hours != "" {
			if err := json.Unmarshal([]byte(hours), &loc.Hours); err != nil {
				log.Printf("req_id=%s location=%q stored hours unreadable: %v", obs.RequestID(ctx), loc.Name, err)
				loc.Hours = nil
				loc.HoursErr = err
			}
		}
		locations = append(locations, &loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return locations, nil
}

// UpsertLocations inserts or replaces locations by name in one transaction.
func (s *SQLLocationRepository) UpsertLocations(ctx context.Context, locations []*domain.Location) (err error) {
	defer obs.Time(ctx, "locations.Upsert")(&err)

	if s.DB == nil {
		return errors.New("location repository: DB is nil")
	}
	if len(locations) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO locations (name, rating, lat, lon, duration_minutes, label, period, hours_json)
	VALUES (%s)
	ON CONFLICT (name) DO UPDATE
	SET rating = excluded.rating,
		lat = excluded.lat,
		lon = excluded.lon,
		duration_minutes = excluded.duration_minutes,
		label = excluded.label,
		period = excluded.period,
		hours_json = excluded.hours_json;
	`, s.Dialect.Placeholders(1, 8)))
	if err != nil {
		return fmt.Errorf("upsert locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, loc := range locations {
		hours, err := json.Marshal(loc.Hours)
		if err != nil {
			return fmt.Errorf("upsert locations: encode hours for %q: %w", loc.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, loc.Name, loc.Rating, loc.Position.Lat, loc.Position.Lon,
			loc.Duration, loc.Label, string(loc.Period), string(hours)); err != nil {
			return fmt.Errorf("upsert locations: insert %q: %w", loc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert locations: commit tx: %w", err)
	}
	return nil
}

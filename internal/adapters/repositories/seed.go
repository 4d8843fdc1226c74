package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"trip-planner-service/internal/domain"
)

// LocationSeed is one catalog entry in a seed file. Hours accept either the
// text form ("09:00-17:00") or an object keyed by ISO weekday.
type LocationSeed struct {
	Name     string             `json:"name"`
	Rating   float64            `json:"rating"`
	Lat      float64            `json:"lat"`
	Lon      float64            `json:"lon"`
	Duration int                `json:"duration"`
	Label    string             `json:"label"`
	Period   string             `json:"period"`
	Hours    domain.WeeklyHours `json:"hours"`
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(data []byte) ([]*domain.Location, error) {
	var items []LocationSeed
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("seed locations: parse json: %w", err)
	}

	out := make([]*domain.Location, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		period, err := domain.ParseDayPeriod(item.Period)
		if err != nil {
			return nil, fmt.Errorf("seed locations: item #%d: %w", i+1, err)
		}
		loc := &domain.Location{
			Name:     strings.TrimSpace(item.Name),
			Rating:   item.Rating,
			Position: domain.Coordinates{Lat: item.Lat, Lon: item.Lon},
			Duration: item.Duration,
			Label:    strings.TrimSpace(item.Label),
			Hours:    item.Hours,
			Period:   period,
		}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("seed locations: item #%d: %w", i+1, err)
		}
		if _, dup := seen[loc.Name]; dup {
			return nil, fmt.Errorf("seed locations: item #%d: duplicate name %q", i+1, loc.Name)
		}
		seen[loc.Name] = struct{}{}
		out = append(out, loc)
	}
	return out, nil
}

// SeedFromJSON loads a seed file into the repository.
func SeedFromJSON(ctx context.Context, repo *SQLLocationRepository, jsonPath string) (int, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed locations: read %q: %w", jsonPath, err)
	}

	locations, err := ParseSeed(data)
	if err != nil {
		return 0, err
	}
	if err := repo.UpsertLocations(ctx, locations); err != nil {
		return 0, fmt.Errorf("seed locations: %w", err)
	}
	return len(locations), nil
}

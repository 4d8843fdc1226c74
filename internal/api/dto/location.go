package dto

import (
	"encoding/json"
	"strings"
	"trip-planner-service/internal/domain"
)

// LocationInput is an inline candidate in a plan request. Hours stay raw so
// a malformed entry excludes only that location instead of failing the request.
type LocationInput struct {
	Name     string          `json:"name"`
	Rating   float64         `json:"rating"`
	Lat      float64         `json:"lat"`
	Lon      float64         `json:"lon"`
	Duration int             `json:"duration"`
	Label    string          `json:"label"`
	Period   string          `json:"period,omitempty"`
	Hours    json.RawMessage `json:"hours"`
}

func (in LocationInput) ToDomain() *domain.Location {
	loc := &domain.Location{
		Name:     in.Name,
		Rating:   in.Rating,
		Position: domain.Coordinates{Lat: in.Lat, Lon: in.Lon},
		Duration: in.Duration,
		Label:    in.Label,
		// An unknown period is kept so Validate excludes the location.
		Period: domain.DayPeriod(strings.ToLower(strings.TrimSpace(in.Period))),
	}
	if len(in.Hours) > 0 {
		var h domain.WeeklyHours
		if err := json.Unmarshal(in.Hours, &h); err != nil {
			loc.HoursErr = err
		} else {
			loc.Hours = h
		}
	}
	return loc
}

type LocationResponse struct {
	Name     string             `json:"name"`
	Rating   float64            `json:"rating"`
	Lat      float64            `json:"lat"`
	Lon      float64            `json:"lon"`
	Duration int                `json:"duration"`
	Label    string             `json:"label,omitempty"`
	Period   domain.DayPeriod   `json:"period,omitempty"`
	Hours    domain.WeeklyHours `json:"hours"`
}

type ListLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
}

func NewLocationResponse(l *domain.Location) LocationResponse {
	return LocationResponse{
		Name:     l.Name,
		Rating:   l.Rating,
		Lat:      l.Position.Lat,
		Lon:      l.Position.Lon,
		Duration: l.Duration,
		Label:    l.Label,
		Period:   l.Period,
		Hours:    l.Hours,
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/services"
)

type stubRepo struct {
	locs []*domain.Location
}

func (s *stubRepo) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	return s.locs, nil
}

type stubGeocoder struct {
	c domain.Coordinates
}

func (g stubGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return g.c, nil
}

func newTestRouter(repo *stubRepo) http.Handler {
	planner := services.NewPlanner(services.NewTravelEstimator(nil, 0, 0), services.DefaultPlannerConfig())
	return NewRouter(Deps{
		Planner:  planner,
		Repo:     repo,
		Geocoder: stubGeocoder{c: domain.Coordinates{Lat: 25.0478, Lon: 121.517}},
		Timezone: time.UTC,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(&stubRepo{}), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestHealthMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestRouter(&stubRepo{}), http.MethodPost, "/health", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestListLocations(t *testing.T) {
	repo := &stubRepo{locs: []*domain.Location{{
		Name: "Taipei 101", Rating: 4.6, Duration: 90,
		Position: domain.Coordinates{Lat: 25.034, Lon: 121.5645},
		Hours:    domain.AllWeek(domain.Segment{Open: 9 * 60, Close: 22 * 60}),
	}}}

	rec := do(t, newTestRouter(repo), http.MethodGet, "/locations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var res dto.ListLocationsResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Locations) != 1 || res.Locations[0].Name != "Taipei 101" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if len(res.Locations[0].Hours[1]) != 1 {
		t.Fatalf("expected hours to round-trip, got %+v", res.Locations[0].Hours)
	}
}

func TestPlanInlineLocations(t *testing.T) {
	body := `{
		"date": "2026-10-19",
		"start_time": "09:00",
		"end_time": "18:00",
		"travel_mode": "walking",
		"custom_start": {"name": "Hotel", "lat": 25.0330, "lon": 121.5654},
		"locations": [
			{"name": "Taipei 101", "rating": 4.6, "lat": 25.0340, "lon": 121.5645, "duration": 90, "hours": "09:00-22:00"},
			{"name": "Broken Hours", "rating": 5, "lat": 25.0341, "lon": 121.5646, "duration": 30, "hours": "sometimes"}
		]
	}`

	rec := do(t, newTestRouter(&stubRepo{}), http.MethodPost, "/plans", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var res dto.PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected start + 1 visit, got %+v", res.Records)
	}
	if res.Records[0].Kind != "start" || res.Records[1].Name != "Taipei 101" {
		t.Fatalf("unexpected records: %+v", res.Records)
	}
	if !res.Records[1].Estimated {
		t.Fatalf("expected straight-line estimate without a provider")
	}
	if res.TerminationReason != string(domain.TerminationNoEligibleCandidate) {
		t.Fatalf("expected no_eligible_candidate (one location excluded), got %q", res.TerminationReason)
	}

	var brokenMsg string
	for _, w := range res.Warnings {
		if w.Location == "Broken Hours" {
			brokenMsg = w.Message
		}
	}
	if brokenMsg == "" {
		t.Fatalf("expected warning for malformed hours, got %+v", res.Warnings)
	}
	if !strings.Contains(brokenMsg, `segment "sometimes"`) {
		t.Fatalf("expected the hours parse cause in the warning, got %q", brokenMsg)
	}
	if !strings.Contains(res.Message, "Taipei 101") {
		t.Fatalf("expected summary message to mention visit, got %q", res.Message)
	}
}

func TestPlanUsesCatalogAndGeocodedStart(t *testing.T) {
	repo := &stubRepo{locs: []*domain.Location{{
		Name: "Longshan Temple", Rating: 4.5, Duration: 45,
		Position: domain.Coordinates{Lat: 25.0372, Lon: 121.4999},
		Hours:    domain.AllWeek(domain.Segment{Open: 6 * 60, Close: 22 * 60}),
	}}}
	body := `{"date": "2026-10-19", "custom_start": {"address": "Taipei Main Station"}}`

	rec := do(t, newTestRouter(repo), http.MethodPost, "/plans", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var res dto.PlanResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Records[0].Name != "Taipei Main Station" || res.Records[0].Lat != 25.0478 {
		t.Fatalf("expected geocoded start, got %+v", res.Records[0])
	}
	if res.TerminationReason != string(domain.TerminationAllVisited) {
		t.Fatalf("expected all_locations_visited, got %q", res.TerminationReason)
	}
}

func TestPlanInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"bogus": 1}`},
		{"no locations", `{"date": "2026-10-19"}`},
		{"bad date", `{"date": "19/10/2026", "locations": []}`},
		{"bad mode", `{"travel_mode": "teleport", "custom_start": {"lat": 25, "lon": 121}}`},
		{"same start and end", `{"start_time": "10:00", "end_time": "10:00", "custom_start": {"lat": 25, "lon": 121}}`},
		{"waypoint without position", `{"custom_start": {"name": "x"}}`},
	}

	h := newTestRouter(&stubRepo{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/plans", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestPlanRateLimited(t *testing.T) {
	planner := services.NewPlanner(nil, services.DefaultPlannerConfig())
	h := NewRouter(Deps{Planner: planner, RateLimitRPS: 0.001, RateLimitBurst: 1})

	body := `{"date": "2026-10-19", "custom_start": {"lat": 25.03, "lon": 121.56}}`
	if rec := do(t, h, http.MethodPost, "/plans", body); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, http.MethodPost, "/plans", body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
}

func TestClientLimiterSweepsIdleClients(t *testing.T) {
	l := newClientLimiter(1, 1)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	if !l.allow("a", now) {
		t.Fatalf("expected first request allowed")
	}
	if l.allow("a", now) {
		t.Fatalf("expected burst exhausted")
	}

	later := now.Add(time.Hour)
	l.allow("b", later)
	if _, ok := l.clients["a"]; ok {
		t.Fatalf("expected idle client to be swept")
	}
}

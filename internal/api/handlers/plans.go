package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"
)

const (
	defaultStartTime  = "09:00"
	defaultEndTime    = "21:00"
	defaultTravelMode = domain.TravelModeDriving
)

type PlanHandler struct {
	Planner *services.Planner
	// Repo supplies candidates when a request carries no inline locations.
	Repo     ports.LocationRepository
	Geocoder ports.Geocoder
	Timezone *time.Location
	// Now is overridable for tests.
	Now func() time.Time
}

// Plan builds a one-day itinerary. Request problems map to 400; everything
// else is logged and reported as 500.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	planReq, err := h.toDomain(ctx, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	it, err := h.Planner.Plan(ctx, planReq)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPlanResponse(it, services.FormatItinerary(it)))
}

func (h *PlanHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("req_id=%s plan failed: %v", obs.RequestID(r.Context()), err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func (h *PlanHandler) toDomain(ctx context.Context, in dto.PlanRequest) (domain.PlanningRequest, error) {
	tz := h.Timezone
	if tz == nil {
		tz = time.UTC
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	out := domain.PlanningRequest{
		DistanceThresholdKm: in.DistanceThresholdKm,
		EfficiencyThreshold: in.EfficiencyThreshold,
	}

	if strings.TrimSpace(in.Date) == "" {
		out.Date = now().In(tz)
	} else {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(in.Date), tz)
		if err != nil {
			return out, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		out.Date = d
	}

	var err error
	if out.StartTime, err = parseClockOr(in.StartTime, defaultStartTime); err != nil {
		return out, fmt.Errorf("%w: start_time: %v", domain.ErrInvalidRequest, err)
	}
	if out.EndTime, err = parseClockOr(in.EndTime, defaultEndTime); err != nil {
		return out, fmt.Errorf("%w: end_time: %v", domain.ErrInvalidRequest, err)
	}

	out.TravelMode = defaultTravelMode
	if strings.TrimSpace(in.TravelMode) != "" {
		if out.TravelMode, err = domain.ParseTravelMode(in.TravelMode); err != nil {
			return out, err
		}
	}

	if out.CustomStart, err = h.resolveWaypoint(ctx, "custom_start", in.CustomStart); err != nil {
		return out, err
	}
	if out.CustomEnd, err = h.resolveWaypoint(ctx, "custom_end", in.CustomEnd); err != nil {
		return out, err
	}

	if len(in.Locations) > 0 {
		out.Locations = make([]*domain.Location, 0, len(in.Locations))
		for _, l := range in.Locations {
			out.Locations = append(out.Locations, l.ToDomain())
		}
		return out, nil
	}

	if h.Repo != nil {
		locs, err := h.Repo.ListLocations(ctx)
		if err != nil {
			return out, fmt.Errorf("load catalog: %w", err)
		}
		out.Locations = locs
	}
	return out, nil
}

func parseClockOr(s, fallback string) (domain.Clock, error) {
	if strings.TrimSpace(s) == "" {
		s = fallback
	}
	return domain.ParseClock(s)
}

// resolveWaypoint prefers explicit coordinates and geocodes an address otherwise.
func (h *PlanHandler) resolveWaypoint(ctx context.Context, field string, in *dto.WaypointInput) (*domain.Waypoint, error) {
	if in == nil {
		return nil, nil
	}

	wp := &domain.Waypoint{Name: strings.TrimSpace(in.Name)}
	if wp.Name == "" {
		wp.Name = strings.TrimSpace(in.Address)
	}

	switch {
	case in.Lat != nil && in.Lon != nil:
		wp.Position = domain.Coordinates{Lat: *in.Lat, Lon: *in.Lon}
	case strings.TrimSpace(in.Address) != "":
		if h.Geocoder == nil {
			return nil, fmt.Errorf("%w: %s: address lookup is not available, send lat/lon", domain.ErrInvalidRequest, field)
		}
		c, err := h.Geocoder.Geocode(ctx, in.Address)
		if err != nil {
			log.Printf("req_id=%s geocode %s failed: %v", obs.RequestID(ctx), field, err)
			return nil, fmt.Errorf("%w: %s: address could not be resolved", domain.ErrInvalidRequest, field)
		}
		wp.Position = c
	default:
		return nil, fmt.Errorf("%w: %s needs lat/lon or address", domain.ErrInvalidRequest, field)
	}

	if wp.Name == "" {
		wp.Name = field
	}
	return wp, nil
}

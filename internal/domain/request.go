package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest is returned before any scheduling starts when a
// PlanningRequest cannot be planned.
var ErrInvalidRequest = errors.New("invalid planning request")

type TravelMode string

const (
	TravelModeDriving TravelMode = "driving"
	TravelModeTransit TravelMode = "transit"
	TravelModeWalking TravelMode = "walking"
)

func ParseTravelMode(s string) (TravelMode, error) {
	switch m := TravelMode(strings.ToLower(strings.TrimSpace(s))); m {
	case TravelModeDriving, TravelModeTransit, TravelModeWalking:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown travel mode %q", ErrInvalidRequest, s)
	}
}

// FallbackSpeedKmh is the assumed average speed used when only a
// straight-line distance is available.
func (m TravelMode) FallbackSpeedKmh() float64 {
	switch m {
	case TravelModeWalking:
		return 4.5
	case TravelModeTransit:
		return 20
	default:
		return 30
	}
}

// Waypoint is a fixed start or end point that is not a candidate location.
type Waypoint struct {
	Name     string
	Position Coordinates
}

// PlanningRequest is the immutable input of one planning run.
type PlanningRequest struct {
	Locations []*Location
	// Date selects the calendar day (and time zone) of the plan; the clock part is ignored.
	Date                time.Time
	StartTime           Clock
	EndTime             Clock
	TravelMode          TravelMode
	DistanceThresholdKm float64
	EfficiencyThreshold float64
	CustomStart         *Waypoint
	CustomEnd           *Waypoint
}

// Window resolves the start and end instants of the day. An end clock before
// the start clock spans midnight.
func (r PlanningRequest) Window() (start, end time.Time, err error) {
	if r.Date.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}
	if r.StartTime < 0 || r.StartTime >= EndOfDay {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start time %s out of range", ErrInvalidRequest, r.StartTime)
	}
	if r.EndTime < 0 || r.EndTime > EndOfDay {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end time %s out of range", ErrInvalidRequest, r.EndTime)
	}
	if r.EndTime == r.StartTime {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end time must differ from start time", ErrInvalidRequest)
	}

	start = r.StartTime.On(r.Date)
	end = r.EndTime.On(r.Date)
	if r.EndTime < r.StartTime {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

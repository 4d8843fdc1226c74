package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const MaxRating = 5.0

// Location is a candidate point of interest. Locations are shared read-only
// across a planning run; names are unique within one run only.
type Location struct {
	Name     string
	Rating   float64
	Position Coordinates
	Duration int // visit length in minutes
	Label    string
	Hours    WeeklyHours
	// Period is the suggested part of the day to visit; empty for no preference.
	Period DayPeriod
	// HoursErr keeps the decode error of hours that could not be read, so the
	// exclusion warning can name the cause.
	HoursErr error
}

// Validate checks the location invariants. Hours problems wrap ErrMalformedHours.
func (l *Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("location: name must be non-empty")
	}
	if l.Duration <= 0 {
		return fmt.Errorf("location %q: duration must be positive, got %d", l.Name, l.Duration)
	}
	if l.Rating < 0 || l.Rating > MaxRating {
		return fmt.Errorf("location %q: rating %.2f outside [0, %.0f]", l.Name, l.Rating, MaxRating)
	}
	if !l.Position.Valid() {
		return fmt.Errorf("location %q: invalid position %s", l.Name, l.Position.Key())
	}
	if l.HoursErr != nil {
		if errors.Is(l.HoursErr, ErrMalformedHours) {
			return fmt.Errorf("location %q: %w", l.Name, l.HoursErr)
		}
		return fmt.Errorf("location %q: %w: %v", l.Name, ErrMalformedHours, l.HoursErr)
	}
	if l.Period != "" && l.Period.Index() < 0 {
		return fmt.Errorf("location %q: unknown period %q", l.Name, l.Period)
	}
	if err := l.Hours.Validate(); err != nil {
		return fmt.Errorf("location %q: %w", l.Name, err)
	}
	return nil
}

func (l *Location) VisitDuration() time.Duration {
	return time.Duration(l.Duration) * time.Minute
}

func (l *Location) IsOpenAt(t time.Time) bool { return l.Hours.IsOpenAt(t) }

func (l *Location) NextOpenTime(t time.Time) (time.Time, bool) { return l.Hours.NextOpenTime(t) }

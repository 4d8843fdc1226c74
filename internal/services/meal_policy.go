package services

import (
	"fmt"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
)

// MealWindow is a time range during which meal stops are favoured.
type MealWindow struct {
	Name  string
	Start domain.Clock
	End   domain.Clock
}

func (w MealWindow) contains(c domain.Clock) bool { return w.Start <= c && c <= w.End }

// ParseMealWindow parses "HH:MM-HH:MM".
func ParseMealWindow(name, s string) (MealWindow, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return MealWindow{}, fmt.Errorf("parse meal window %q: expected HH:MM-HH:MM", s)
	}
	start, err := domain.ParseClock(from)
	if err != nil {
		return MealWindow{}, fmt.Errorf("parse meal window %q: %w", s, err)
	}
	end, err := domain.ParseClock(to)
	if err != nil {
		return MealWindow{}, fmt.Errorf("parse meal window %q: %w", s, err)
	}
	if end <= start {
		return MealWindow{}, fmt.Errorf("parse meal window %q: end must be after start", s)
	}
	return MealWindow{Name: name, Start: start, End: end}, nil
}

func DefaultMealWindows() []MealWindow {
	return []MealWindow{
		{Name: "lunch", Start: 11*60 + 30, End: 13*60 + 30},
		{Name: "dinner", Start: 17*60 + 30, End: 19*60 + 30},
	}
}

// MealPolicy tracks which meal windows of the planning day are still open.
// It only biases scoring; it never forces a meal stop.
type MealPolicy struct {
	windows []mealSlot
}

type mealSlot struct {
	window     MealWindow
	start, end time.Time
	taken      bool
}

// NewMealPolicy anchors windows on the calendar day of day. State is per run.
func NewMealPolicy(day time.Time, windows []MealWindow) *MealPolicy {
	slots := make([]mealSlot, 0, len(windows))
	for _, w := range windows {
		slots = append(slots, mealSlot{window: w, start: w.Start.On(day), end: w.End.On(day)})
	}
	return &MealPolicy{windows: slots}
}

// Advance marks windows whose end has passed as taken: the opportunity lapsed.
func (p *MealPolicy) Advance(now time.Time) {
	for i := range p.windows {
		if !p.windows[i].taken && now.After(p.windows[i].end) {
			p.windows[i].taken = true
		}
	}
}

// Active returns the un-taken window containing now.
func (p *MealPolicy) Active(now time.Time) (MealWindow, bool) {
	for _, s := range p.windows {
		if !s.taken && !now.Before(s.start) && !now.After(s.end) {
			return s.window, true
		}
	}
	return MealWindow{}, false
}

// RecordMeal marks the window active at now as taken.
func (p *MealPolicy) RecordMeal(now time.Time) {
	for i, s := range p.windows {
		if !s.taken && !now.Before(s.start) && !now.After(s.end) {
			p.windows[i].taken = true
			return
		}
	}
}

func (p *MealPolicy) Taken(name string) bool {
	for _, s := range p.windows {
		if s.window.Name == name {
			return s.taken
		}
	}
	return false
}

// PeriodAt classifies a time of day relative to the lunch and dinner windows.
// Missing windows fall back to fixed hour boundaries.
func PeriodAt(c domain.Clock, windows []MealWindow) domain.DayPeriod {
	lunch := MealWindow{Start: 11 * 60, End: 14 * 60}
	dinner := MealWindow{Start: 17 * 60, End: 20 * 60}
	for _, w := range windows {
		switch w.Name {
		case "lunch":
			lunch = w
		case "dinner":
			dinner = w
		}
	}

	switch {
	case c < lunch.Start:
		return domain.PeriodMorning
	case lunch.contains(c):
		return domain.PeriodLunch
	case c < dinner.Start:
		return domain.PeriodAfternoon
	case dinner.contains(c):
		return domain.PeriodDinner
	default:
		return domain.PeriodNight
	}
}

// PeriodDuring classifies now within a plan that started on the calendar day
// of start. Anything past that day's midnight is night.
func PeriodDuring(now, start time.Time, windows []MealWindow) domain.DayPeriod {
	if !now.Before(domain.EndOfDay.On(start)) {
		return domain.PeriodNight
	}
	return PeriodAt(domain.ClockOf(now), windows)
}

package domain

import (
	"fmt"
	"strings"
)

// DayPeriod is a coarse part of the day, in visiting order.
type DayPeriod string

const (
	PeriodMorning   DayPeriod = "morning"
	PeriodLunch     DayPeriod = "lunch"
	PeriodAfternoon DayPeriod = "afternoon"
	PeriodDinner    DayPeriod = "dinner"
	PeriodNight     DayPeriod = "night"
)

var dayPeriods = []DayPeriod{PeriodMorning, PeriodLunch, PeriodAfternoon, PeriodDinner, PeriodNight}

// ParseDayPeriod accepts a period name case-insensitively. An empty string
// means no suggested period.
func ParseDayPeriod(s string) (DayPeriod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, p := range dayPeriods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown day period %q", s)
}

// Index is the position of p in the day, or -1 for an unknown period.
func (p DayPeriod) Index() int {
	for i, q := range dayPeriods {
		if q == p {
			return i
		}
	}
	return -1
}

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day in minutes since midnight. 1440 (24:00) marks the end of the day.
type Clock int

const EndOfDay Clock = 24 * 60

// ParseClock parses "HH:MM". "24:00" is accepted as EndOfDay.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: hour: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: minute: %w", s, err)
	}

	if h == 24 && m == 0 {
		return EndOfDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}

	return Clock(h*60 + m), nil
}

// ClockOf returns the wall-clock minute of t in t's location.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On returns the instant at clock c on the calendar day of t.
func (c Clock) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Add(time.Duration(c) * time.Minute)
}

func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Segment is one open interval of a day, inclusive at both ends.
type Segment struct {
	Open  Clock `json:"open"`
	Close Clock `json:"close"`
}

func (s Segment) contains(c Clock) bool { return s.Open <= c && c <= s.Close }

// ISOWeekday maps t to 1 (Monday) .. 7 (Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeeklyHours maps ISO weekday (1..7) to that day's ordered open segments.
// An empty list means closed all day.
type WeeklyHours map[int][]Segment

var ErrMalformedHours = errors.New("malformed business hours")

// Validate checks that every weekday is present and each day's segments are
// in range, ascending and disjoint.
func (h WeeklyHours) Validate() error {
	if len(h) == 0 {
		return fmt.Errorf("%w: no weekdays", ErrMalformedHours)
	}

	for day := range h {
		if day < 1 || day > 7 {
			return fmt.Errorf("%w: weekday %d out of range", ErrMalformedHours, day)
		}
	}

	for day := 1; day <= 7; day++ {
		segs, ok := h[day]
		if !ok {
			return fmt.Errorf("%w: weekday %d missing", ErrMalformedHours, day)
		}

		for i, s := range segs {
			if s.Open < 0 || s.Close > EndOfDay || s.Open >= s.Close {
				return fmt.Errorf("%w: weekday %d segment %s-%s invalid", ErrMalformedHours, day, s.Open, s.Close)
			}
			if i > 0 && s.Open < segs[i-1].Close {
				return fmt.Errorf("%w: weekday %d segments unsorted or overlapping", ErrMalformedHours, day)
			}
		}
	}

	return nil
}

// SegmentAt returns the segment containing t on t's weekday.
func (h WeeklyHours) SegmentAt(t time.Time) (Segment, bool) {
	c := ClockOf(t)
	for _, s := range h[ISOWeekday(t)] {
		if s.contains(c) {
			return s, true
		}
	}
	return Segment{}, false
}

// IsOpenAt reports whether t falls within an open segment of its weekday.
func (h WeeklyHours) IsOpenAt(t time.Time) bool {
	_, ok := h.SegmentAt(t)
	return ok
}

const nextOpenHorizonDays = 7

// NextOpenTime returns t if open at t, otherwise the start of the next open
// segment within a 7-day horizon. ok is false when nothing opens in that horizon.
func (h WeeklyHours) NextOpenTime(t time.Time) (next time.Time, ok bool) {
	if h.IsOpenAt(t) {
		return t, true
	}

	for offset := 0; offset <= nextOpenHorizonDays; offset++ {
		y, m, d := t.Date()
		day := time.Date(y, m, d+offset, 0, 0, 0, 0, t.Location())
		for _, s := range h[ISOWeekday(day)] {
			start := s.Open.On(day)
			if start.After(t) {
				return start, true
			}
		}
	}

	return time.Time{}, false
}

// AllWeek returns hours with the same segments on every weekday.
func AllWeek(segs ...Segment) WeeklyHours {
	h := make(WeeklyHours, 7)
	for day := 1; day <= 7; day++ {
		h[day] = append([]Segment(nil), segs...)
	}
	return h
}

var allDayPhrases = []string{"24 hours", "open 24 hours", "24h", "24/7", "24小時開放", "24小時營業"}

// ParseHoursText parses the compact text form used by request payloads:
// "09:00 - 22:00", "11:00-14:00, 17:00-21:00", "24 hours" or "closed".
// The result applies to all seven weekdays. Segments must be listed in
// ascending, non-overlapping order, as in the weekday-object form.
func ParseHoursText(s string) (WeeklyHours, error) {
	text := strings.TrimSpace(s)
	lower := strings.ToLower(text)

	for _, p := range allDayPhrases {
		if lower == p {
			return AllWeek(Segment{Open: 0, Close: EndOfDay}), nil
		}
	}
	if lower == "closed" {
		return AllWeek(), nil
	}

	var segs []Segment
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' }) {
		open, closeStr, ok := strings.Cut(part, "-")
		if !ok {
			return nil, fmt.Errorf("%w: segment %q", ErrMalformedHours, part)
		}

		o, err := ParseClock(open)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHours, err)
		}
		c, err := ParseClock(closeStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHours, err)
		}
		// A midnight close ends the day rather than starting it.
		if c == 0 {
			c = EndOfDay
		}
		segs = append(segs, Segment{Open: o, Close: c})
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: empty hours %q", ErrMalformedHours, s)
	}

	h := AllWeek(segs...)
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// UnmarshalJSON accepts either the text form or an object keyed by weekday.
// Structural problems are left for Validate so a bad entry degrades to closed.
func (h *WeeklyHours) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseHoursText(s)
		if err != nil {
			return err
		}
		*h = parsed
		return nil
	}

	var raw map[string][]Segment
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := make(WeeklyHours, len(raw))
	for k, segs := range raw {
		day, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("%w: weekday key %q", ErrMalformedHours, k)
		}
		out[day] = segs
	}
	*h = out
	return nil
}

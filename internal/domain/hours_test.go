package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %q: %v", s, err)
	}
	return c
}

// 2026-10-19 is a Monday.
func at(day int, hhmm string) time.Time {
	c, err := ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	return c.On(time.Date(2026, 10, 18+day, 0, 0, 0, 0, time.UTC))
}

func splitDayHours(t *testing.T) WeeklyHours {
	h := AllWeek(
		Segment{Open: mustClock(t, "11:00"), Close: mustClock(t, "14:00")},
		Segment{Open: mustClock(t, "17:00"), Close: mustClock(t, "21:00")},
	)
	h[2] = []Segment{} // closed on Tuesday
	return h
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:05", want: 545},
		{in: " 23:59", want: 1439},
		{in: "24:00", want: EndOfDay},
		{in: "24:01", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWeeklyHoursIsOpenAt(t *testing.T) {
	h := splitDayHours(t)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "before opening", at: at(1, "10:59"), want: false},
		{name: "opening minute", at: at(1, "11:00"), want: true},
		{name: "closing minute", at: at(1, "14:00"), want: true},
		{name: "lunch closure", at: at(1, "15:30"), want: false},
		{name: "second segment", at: at(1, "18:00"), want: true},
		{name: "closed day", at: at(2, "12:00"), want: false},
		{name: "sunday", at: at(7, "12:00"), want: true},
	}

	for _, tt := range tests {
		if got := h.IsOpenAt(tt.at); got != tt.want {
			t.Errorf("%s: IsOpenAt(%s) = %v, want %v", tt.name, tt.at.Format(time.RFC3339), got, tt.want)
		}
	}
}

func TestWeeklyHoursNextOpenTime(t *testing.T) {
	h := splitDayHours(t)

	got, ok := h.NextOpenTime(at(1, "12:30"))
	if !ok || !got.Equal(at(1, "12:30")) {
		t.Fatalf("open now: got %v ok=%v", got, ok)
	}

	got, ok = h.NextOpenTime(at(1, "15:00"))
	if !ok || !got.Equal(at(1, "17:00")) {
		t.Fatalf("same day: got %v ok=%v, want %v", got, ok, at(1, "17:00"))
	}

	// Monday night skips closed Tuesday.
	got, ok = h.NextOpenTime(at(1, "22:00"))
	if !ok || !got.Equal(at(3, "11:00")) {
		t.Fatalf("skip closed day: got %v ok=%v, want %v", got, ok, at(3, "11:00"))
	}

	closed := AllWeek()
	if got, ok := closed.NextOpenTime(at(1, "09:00")); ok {
		t.Fatalf("always closed: expected no opening, got %v", got)
	}
}

func TestWeeklyHoursValidate(t *testing.T) {
	valid := splitDayHours(t)
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := splitDayHours(t)
	delete(missing, 4)

	unsorted := splitDayHours(t)
	unsorted[1] = []Segment{unsorted[1][1], unsorted[1][0]}

	overlapping := splitDayHours(t)
	overlapping[1] = []Segment{
		{Open: mustClock(t, "09:00"), Close: mustClock(t, "13:00")},
		{Open: mustClock(t, "12:00"), Close: mustClock(t, "18:00")},
	}

	inverted := splitDayHours(t)
	inverted[5] = []Segment{{Open: mustClock(t, "18:00"), Close: mustClock(t, "09:00")}}

	for name, h := range map[string]WeeklyHours{
		"missing weekday": missing,
		"unsorted":        unsorted,
		"overlapping":     overlapping,
		"inverted":        inverted,
		"empty":           nil,
	} {
		if err := h.Validate(); !errors.Is(err, ErrMalformedHours) {
			t.Errorf("%s: expected ErrMalformedHours, got %v", name, err)
		}
	}
}

func TestParseHoursText(t *testing.T) {
	h, err := ParseHoursText("17:00 - 00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Validate(); err != nil {
		t.Fatalf("parsed hours invalid: %v", err)
	}
	if got := h[3]; len(got) != 1 || got[0].Open != 1020 || got[0].Close != EndOfDay {
		t.Fatalf("midnight close: got %+v", got)
	}

	h, err = ParseHoursText("11:00-14:00, 17:00-21:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h[1]; len(got) != 2 || got[0].Open != 660 || got[1].Open != 1020 {
		t.Fatalf("split day: %+v", got)
	}

	// Text and weekday-object forms agree on out-of-order segments.
	for _, bad := range []string{"17:00-21:00, 11:00-14:00", "11:00-15:00, 14:00-21:00", "22:00-09:00"} {
		if _, err := ParseHoursText(bad); !errors.Is(err, ErrMalformedHours) {
			t.Fatalf("ParseHoursText(%q): expected ErrMalformedHours, got %v", bad, err)
		}
	}

	h, err = ParseHoursText("24小時開放")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.IsOpenAt(at(6, "03:00")) {
		t.Fatalf("all-day hours should be open at 03:00")
	}

	if _, err := ParseHoursText("sometimes"); !errors.Is(err, ErrMalformedHours) {
		t.Fatalf("expected ErrMalformedHours, got %v", err)
	}
}

func TestWeeklyHoursJSON(t *testing.T) {
	var fromText WeeklyHours
	if err := json.Unmarshal([]byte(`"09:00 - 22:00"`), &fromText); err != nil {
		t.Fatalf("unmarshal text: %v", err)
	}
	if !fromText.IsOpenAt(at(2, "21:00")) {
		t.Fatalf("text hours should be open Tuesday 21:00")
	}

	var fromObject WeeklyHours
	payload := `{"1":[{"open":"09:00","close":"12:00"},{"open":"13:00","close":"18:00"}],
		"2":[],"3":[],"4":[],"5":[],"6":[],"7":[{"open":"10:00","close":"24:00"}]}`
	if err := json.Unmarshal([]byte(payload), &fromObject); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if err := fromObject.Validate(); err != nil {
		t.Fatalf("object hours invalid: %v", err)
	}
	if fromObject.IsOpenAt(at(1, "12:30")) {
		t.Fatalf("Monday 12:30 falls in the lunch closure")
	}
	if !fromObject.IsOpenAt(at(7, "23:59")) {
		t.Fatalf("Sunday 23:59 should be open")
	}

	encoded, err := json.Marshal(fromObject)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again WeeklyHours
	if err := json.Unmarshal(encoded, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if len(again[1]) != 2 || again[7][0].Close != EndOfDay {
		t.Fatalf("encoded hours lost segments: %s", encoded)
	}
}

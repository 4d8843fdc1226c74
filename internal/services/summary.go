package services

import (
	"fmt"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
)

var terminationNotes = map[domain.TerminationReason]string{
	domain.TerminationTimeExhausted:       "Day ends here: no time left for another stop.",
	domain.TerminationNoEligibleCandidate: "No other place is open and close enough right now.",
	domain.TerminationAllVisited:          "Every place on the list is covered.",
	domain.TerminationCustomEndReached:    "Arrived at the end point.",
}

// FormatItinerary renders a plain-text day summary suitable for a chat message.
func FormatItinerary(it *domain.Itinerary) string {
	var b strings.Builder
	b.WriteString("One-day itinerary\n")

	for _, r := range it.Records {
		switch r.Kind {
		case domain.RecordStart:
			fmt.Fprintf(&b, "\n%s  Depart from %s\n", r.DepartureTime.Format("15:04"), r.Name)
		case domain.RecordEnd:
			fmt.Fprintf(&b, "\n%s  Arrive at %s%s\n", r.ArrivalTime.Format("15:04"), r.Name, travelNote(r))
		default:
			kind := "Visit"
			if r.IsMeal {
				kind = "Meal"
			}
			fmt.Fprintf(&b, "\n%s  %s - %s\n", kind, r.Name, r.ArrivalTime.Format("15:04")+"-"+r.DepartureTime.Format("15:04"))
			fmt.Fprintf(&b, "  stay %d min%s\n", int(r.DepartureTime.Sub(r.ArrivalTime).Minutes()), travelNote(r))
			if r.Location != nil && r.Location.Hours != nil {
				fmt.Fprintf(&b, "  hours %s\n", hoursOn(r.Location.Hours, r.ArrivalTime))
			}
		}
	}

	if note, ok := terminationNotes[it.TerminationReason]; ok {
		fmt.Fprintf(&b, "\n%s\n", note)
	}
	return b.String()
}

func travelNote(r domain.VisitRecord) string {
	if r.TravelDuration == 0 {
		return ""
	}
	approx := ""
	if r.Estimated {
		approx = "~"
	}
	return fmt.Sprintf(", travel %s%d min / %.1f km", approx, int(r.TravelDuration.Minutes()), r.TravelDistanceKm)
}

// hoursOn renders the opening hours of the weekday of t.
func hoursOn(h domain.WeeklyHours, t time.Time) string {
	segs := h[domain.ISOWeekday(t)]
	if len(segs) == 0 {
		return "closed"
	}
	if len(segs) == 1 && segs[0].Open == 0 && segs[0].Close == domain.EndOfDay {
		return "open 24 hours"
	}

	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.Open.String() + "-" + s.Close.String()
	}
	return strings.Join(parts, ", ")
}

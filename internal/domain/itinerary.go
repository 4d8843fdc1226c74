package domain

import (
	"errors"
	"fmt"
	"time"
)

type RecordKind string

const (
	RecordStart RecordKind = "start"
	RecordVisit RecordKind = "visit"
	RecordEnd   RecordKind = "end"
)

// VisitRecord is one committed stop. Location is nil for custom start/end points.
type VisitRecord struct {
	Kind             RecordKind
	Name             string
	Location         *Location
	Position         Coordinates
	ArrivalTime      time.Time
	DepartureTime    time.Time
	TravelDistanceKm float64
	TravelDuration   time.Duration
	// Estimated marks a travel leg computed from straight-line distance.
	Estimated bool
	IsMeal    bool
}

type TerminationReason string

const (
	TerminationTimeExhausted       TerminationReason = "time_exhausted"
	TerminationNoEligibleCandidate TerminationReason = "no_eligible_candidate"
	TerminationAllVisited          TerminationReason = "all_locations_visited"
	TerminationCustomEndReached    TerminationReason = "custom_end_reached"
)

// Warning is a non-fatal condition met during planning.
type Warning struct {
	Location string
	Message  string
}

var ErrItineraryFrozen = errors.New("itinerary is frozen")

// Itinerary is an append-only sequence of VisitRecords. Each record's arrival
// depends only on its predecessor's departure plus the travel leg, so appends
// never revisit earlier records.
type Itinerary struct {
	Records           []VisitRecord
	TerminationReason TerminationReason
	Warnings          []Warning
	frozen            bool
}

func NewItinerary() *Itinerary {
	return &Itinerary{Records: []VisitRecord{}, Warnings: []Warning{}}
}

// Append adds rec at the tail, rejecting records that would run backwards in time.
func (it *Itinerary) Append(rec VisitRecord) error {
	if it.frozen {
		return ErrItineraryFrozen
	}
	if rec.DepartureTime.Before(rec.ArrivalTime) {
		return fmt.Errorf("append %q: departure %s before arrival %s",
			rec.Name, rec.DepartureTime.Format(time.RFC3339), rec.ArrivalTime.Format(time.RFC3339))
	}
	if last, ok := it.Last(); ok && rec.ArrivalTime.Before(last.DepartureTime) {
		return fmt.Errorf("append %q: arrival %s before previous departure %s",
			rec.Name, rec.ArrivalTime.Format(time.RFC3339), last.DepartureTime.Format(time.RFC3339))
	}

	it.Records = append(it.Records, rec)
	return nil
}

func (it *Itinerary) Last() (VisitRecord, bool) {
	if len(it.Records) == 0 {
		return VisitRecord{}, false
	}
	return it.Records[len(it.Records)-1], true
}

// Visits returns only the records of kind RecordVisit.
func (it *Itinerary) Visits() []VisitRecord {
	out := make([]VisitRecord, 0, len(it.Records))
	for _, r := range it.Records {
		if r.Kind == RecordVisit {
			out = append(out, r)
		}
	}
	return out
}

// Totals aggregates travel over all records. Visit time is excluded.
func (it *Itinerary) Totals() (distanceKm float64, travel time.Duration) {
	for _, r := range it.Records {
		distanceKm += r.TravelDistanceKm
		travel += r.TravelDuration
	}
	return distanceKm, travel
}

func (it *Itinerary) Warn(location, msg string) {
	it.Warnings = append(it.Warnings, Warning{Location: location, Message: msg})
}

// Freeze records why planning stopped; later appends fail.
func (it *Itinerary) Freeze(reason TerminationReason) {
	it.TerminationReason = reason
	it.frozen = true
}

func (it *Itinerary) Frozen() bool { return it.frozen }

package domain

import (
	"errors"
	"testing"
	"time"
)

func TestItineraryAppend(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	museum := &Location{Name: "Museum", Rating: 4.5, Duration: 90, Hours: AllWeek(Segment{Open: 540, Close: 1080})}

	it := NewItinerary()
	if err := it.Append(VisitRecord{Kind: RecordStart, Name: "Hotel", ArrivalTime: start, DepartureTime: start}); err != nil {
		t.Fatalf("append start: %v", err)
	}

	arrive := start.Add(15 * time.Minute)
	visit := VisitRecord{
		Kind:           RecordVisit,
		Name:           museum.Name,
		Location:       museum,
		ArrivalTime:    arrive,
		DepartureTime:  arrive.Add(museum.VisitDuration()),
		TravelDuration: 15 * time.Minute,
	}
	if err := it.Append(visit); err != nil {
		t.Fatalf("append visit: %v", err)
	}

	last, ok := it.Last()
	if !ok || last.Name != "Museum" {
		t.Fatalf("last = %+v, ok=%v", last, ok)
	}
	if !last.DepartureTime.Equal(start.Add(105 * time.Minute)) {
		t.Fatalf("departure = %v, want %v", last.DepartureTime, start.Add(105*time.Minute))
	}
	if got := len(it.Visits()); got != 1 {
		t.Fatalf("visits = %d, want 1", got)
	}

	// Arriving before the previous departure would break time ordering.
	early := VisitRecord{Kind: RecordVisit, Name: "Cafe", ArrivalTime: arrive, DepartureTime: arrive.Add(time.Hour)}
	if err := it.Append(early); err == nil {
		t.Fatalf("expected error for arrival before previous departure")
	}

	it.Freeze(TerminationAllVisited)
	if !it.Frozen() || it.TerminationReason != TerminationAllVisited {
		t.Fatalf("freeze did not record reason: %+v", it)
	}

	late := VisitRecord{Kind: RecordEnd, Name: "Station", ArrivalTime: last.DepartureTime, DepartureTime: last.DepartureTime}
	if err := it.Append(late); !errors.Is(err, ErrItineraryFrozen) {
		t.Fatalf("append after freeze: got %v, want ErrItineraryFrozen", err)
	}
}

func TestPlanningRequestWindow(t *testing.T) {
	day := time.Date(2026, 10, 19, 15, 45, 0, 0, time.UTC)

	req := PlanningRequest{Date: day, StartTime: 9 * 60, EndTime: 21 * 60}
	start, end, err := req.Window()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2026, 10, 19, 21, 0, 0, 0, time.UTC)) {
		t.Fatalf("window = %v .. %v", start, end)
	}

	overnight := PlanningRequest{Date: day, StartTime: 18 * 60, EndTime: 2 * 60}
	_, end, err = overnight.Window()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.Equal(time.Date(2026, 10, 20, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("overnight end = %v", end)
	}

	same := PlanningRequest{Date: day, StartTime: 600, EndTime: 600}
	if _, _, err := same.Window(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("equal start/end: got %v, want ErrInvalidRequest", err)
	}

	if _, _, err := (PlanningRequest{StartTime: 600, EndTime: 700}).Window(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing date: got %v, want ErrInvalidRequest", err)
	}
}

func TestCoordinatesDistanceKm(t *testing.T) {
	taipei101 := Coordinates{Lat: 25.0339808, Lon: 121.561964}
	mainStation := Coordinates{Lat: 25.0426731, Lon: 121.5170756}

	d := taipei101.DistanceKm(mainStation)
	if d < 4.4 || d > 4.8 {
		t.Fatalf("distance = %.3f km, want about 4.6 km", d)
	}
	if taipei101.DistanceKm(taipei101) != 0 {
		t.Fatalf("distance to self should be zero")
	}
}

func TestItineraryTotals(t *testing.T) {
	it := NewItinerary()
	t0 := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	recs := []VisitRecord{
		{Kind: RecordStart, Name: "S", ArrivalTime: t0, DepartureTime: t0},
		{Kind: RecordVisit, Name: "A", ArrivalTime: t0.Add(10 * time.Minute), DepartureTime: t0.Add(40 * time.Minute),
			TravelDistanceKm: 2, TravelDuration: 10 * time.Minute},
		{Kind: RecordVisit, Name: "B", ArrivalTime: t0.Add(55 * time.Minute), DepartureTime: t0.Add(90 * time.Minute),
			TravelDistanceKm: 3.5, TravelDuration: 15 * time.Minute},
	}
	for _, r := range recs {
		if err := it.Append(r); err != nil {
			t.Fatalf("append %s: %v", r.Name, err)
		}
	}

	km, travel := it.Totals()
	if km != 5.5 || travel != 25*time.Minute {
		t.Fatalf("totals = %.1f km / %v, want 5.5 km / 25m", km, travel)
	}
}

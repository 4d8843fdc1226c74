package dto

import (
	"time"
	"trip-planner-service/internal/domain"
)

// WaypointInput is a custom start or end. Either lat/lon or an address is required.
type WaypointInput struct {
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Address string   `json:"address"`
}

type PlanRequest struct {
	Locations           []LocationInput `json:"locations"`
	Date                string          `json:"date"`
	StartTime           string          `json:"start_time"`
	EndTime             string          `json:"end_time"`
	TravelMode          string          `json:"travel_mode"`
	DistanceThresholdKm float64         `json:"distance_threshold_km"`
	EfficiencyThreshold float64         `json:"efficiency_threshold"`
	CustomStart         *WaypointInput  `json:"custom_start"`
	CustomEnd           *WaypointInput  `json:"custom_end"`
}

type VisitRecordResponse struct {
	Kind             string    `json:"kind"`
	Name             string    `json:"name"`
	Lat              float64   `json:"lat"`
	Lon              float64   `json:"lon"`
	Label            string    `json:"label,omitempty"`
	ArrivalTime      time.Time `json:"arrival_time"`
	DepartureTime    time.Time `json:"departure_time"`
	TravelDistanceKm float64   `json:"travel_distance_km"`
	TravelMinutes    int       `json:"travel_minutes"`
	Estimated        bool      `json:"estimated"`
	IsMeal           bool      `json:"is_meal"`
}

type WarningResponse struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

type PlanResponse struct {
	Records            []VisitRecordResponse `json:"records"`
	TotalTravelKm      float64               `json:"total_travel_km"`
	TotalTravelMinutes int                   `json:"total_travel_minutes"`
	TerminationReason  string                `json:"termination_reason"`
	Warnings           []WarningResponse     `json:"warnings"`
	Message            string                `json:"message"`
}

func NewPlanResponse(it *domain.Itinerary, message string) PlanResponse {
	km, travel := it.Totals()
	res := PlanResponse{
		Records:            make([]VisitRecordResponse, 0, len(it.Records)),
		TotalTravelKm:      km,
		TotalTravelMinutes: int(travel / time.Minute),
		TerminationReason:  string(it.TerminationReason),
		Warnings:           make([]WarningResponse, 0, len(it.Warnings)),
		Message:            message,
	}
	for _, r := range it.Records {
		rec := VisitRecordResponse{
			Kind:             string(r.Kind),
			Name:             r.Name,
			Lat:              r.Position.Lat,
			Lon:              r.Position.Lon,
			ArrivalTime:      r.ArrivalTime,
			DepartureTime:    r.DepartureTime,
			TravelDistanceKm: r.TravelDistanceKm,
			TravelMinutes:    int(r.TravelDuration / time.Minute),
			Estimated:        r.Estimated,
			IsMeal:           r.IsMeal,
		}
		if r.Location != nil {
			rec.Label = r.Location.Label
		}
		res.Records = append(res.Records, rec)
	}
	for _, w := range it.Warnings {
		res.Warnings = append(res.Warnings, WarningResponse{Location: w.Location, Message: w.Message})
	}
	return res
}

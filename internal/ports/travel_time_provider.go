package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Distance and travel duration between two positions.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving travel distance and duration between positions.
type TravelTimeProvider interface {
	// Return travel distance and estimated duration for one origin/destination pair.
	GetTravelTime(ctx context.Context, origin, destination domain.Coordinates, mode domain.TravelMode) (DistanceResult, error)
}

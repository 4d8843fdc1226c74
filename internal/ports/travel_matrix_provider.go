package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Optional extension of TravelTimeProvider that supports batched lookups.
type TravelMatrixProvider interface {
	TravelTimeProvider
	// Return results from one origin to many destinations, aligned with destinations.
	GetTravelTimes(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates, mode domain.TravelMode) ([]DistanceResult, error)
}

package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Port: a boundary for retrieving the stored location catalog.
type LocationRepository interface {
	// Retrieve all catalog locations available for planning.
	ListLocations(ctx context.Context) ([]*domain.Location, error)
}

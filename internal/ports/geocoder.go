package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Resolves free-form addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

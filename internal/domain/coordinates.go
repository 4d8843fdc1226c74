package domain

import (
	"fmt"

	"github.com/golang/geo/s2"
)

const earthRadiusKm = 6371.0

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether both components fall inside their geographic range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceKm returns the great-circle distance to o in kilometers.
func (c Coordinates) DistanceKm(o Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(c.Lat, c.Lon)
	p2 := s2.LatLngFromDegrees(o.Lat, o.Lon)
	return p1.Distance(p2).Radians() * earthRadiusKm
}

// Key renders the coordinates at ~10cm precision for use as a cache key.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

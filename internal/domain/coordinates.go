package domain

import "math"

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// IsValid reports whether both components are finite numbers.
// Every coordinate must pass this check before it is used in distance math
// or handed out for display.
func (c Coordinates) IsValid() bool {
	return isFinite(c.Lat) && isFinite(c.Lng)
}

// Offset returns the coordinates shifted by the given degrees.
func (c Coordinates) Offset(dLat, dLng float64) Coordinates {
	return Coordinates{Lat: c.Lat + dLat, Lng: c.Lng + dLng}
}

func IsValidCoordinates(c Coordinates) bool { return c.IsValid() }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

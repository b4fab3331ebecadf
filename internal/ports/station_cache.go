package ports

import "travel-ticket-service/internal/domain"

// In-memory memo of ranked station lookups, keyed by center and radius.
type StationCache interface {
	Get(center domain.Coordinates, radiusMeters int) ([]domain.PoliceStation, bool)
	Set(center domain.Coordinates, radiusMeters int, stations []domain.PoliceStation)
}

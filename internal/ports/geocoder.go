package ports

import (
	"context"
	"travel-ticket-service/internal/domain"
)

// Contract for forward and reverse geocoding.
type Geocoder interface {
	// Return the single best match for a free-text place name.
	// Implementations return *domain.NotFoundError when nothing matched.
	Search(ctx context.Context, query string) (domain.Location, error)
	// Return the address shape for a coordinate.
	Reverse(ctx context.Context, c domain.Coordinates) (domain.Place, error)
}

// Optional persistent memo of forward geocoding results.
type GeocodeCache interface {
	Get(ctx context.Context, query string) (domain.Location, bool, error)
	Put(ctx context.Context, query string, loc domain.Location) error
}

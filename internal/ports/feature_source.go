package ports

import (
	"context"
	"travel-ticket-service/internal/domain"
)

// FeatureSource queries police-tagged map features around a point.
type FeatureSource interface {
	PoliceFeatures(ctx context.Context, center domain.Coordinates, radiusMeters int) ([]domain.Feature, error)
}

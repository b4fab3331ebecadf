package ports

import (
	"context"
	"travel-ticket-service/internal/domain"
)

// PositionProvider yields the traveler's device coordinates.
type PositionProvider interface {
	// Return a single current coordinate. May fail or time out.
	CurrentPosition(ctx context.Context) (domain.Coordinates, error)
	// Stream coordinate updates until ctx is done. The channel is closed on exit.
	Watch(ctx context.Context) <-chan domain.Coordinates
}

package geolocation

import (
	"context"
	"errors"
	"travel-ticket-service/internal/domain"
)

// ErrUnavailable is returned when no position can be produced.
var ErrUnavailable = errors.New("position unavailable")

// Fixed reports the same coordinate on every call. It backs requests that
// carry their own lat/lng and tests.
type Fixed struct {
	Position domain.Coordinates
}

func NewFixed(c domain.Coordinates) *Fixed {
	return &Fixed{Position: c}
}

func (f *Fixed) CurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}
	if !f.Position.IsValid() {
		return domain.Coordinates{}, ErrUnavailable
	}
	return f.Position, nil
}

// Watch emits the fixed position once and closes when ctx is done.
func (f *Fixed) Watch(ctx context.Context) <-chan domain.Coordinates {
	out := make(chan domain.Coordinates, 1)
	if f.Position.IsValid() {
		out <- f.Position
	}
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}

package geodata

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
	"travel-ticket-service/internal/domain"
)

// MockGeocoder serves fixed results keyed by lower-cased query.
type MockGeocoder struct {
	Locations  map[string]domain.Location
	Places     map[domain.Coordinates]domain.Place
	Err        error
	ReverseErr error

	searches atomic.Int64
}

func NewMockGeocoder(locations map[string]domain.Location) *MockGeocoder {
	m := make(map[string]domain.Location, len(locations))
	for k, v := range locations {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &MockGeocoder{Locations: m, Places: map[domain.Coordinates]domain.Place{}}
}

func (g *MockGeocoder) Search(ctx context.Context, query string) (domain.Location, error) {
	g.searches.Add(1)
	if g.Err != nil {
		return domain.Location{}, g.Err
	}

	loc, ok := g.Locations[strings.ToLower(strings.TrimSpace(query))]
	if !ok {
		return domain.Location{}, &domain.NotFoundError{What: "location", Query: query}
	}
	return loc, nil
}

func (g *MockGeocoder) Reverse(ctx context.Context, c domain.Coordinates) (domain.Place, error) {
	if g.ReverseErr != nil {
		return domain.Place{}, g.ReverseErr
	}
	return g.Places[c], nil
}

// Searches returns how many forward lookups reached the mock.
func (g *MockGeocoder) Searches() int { return int(g.searches.Load()) }

// MockFeatureSource returns a fixed feature list, an error, or blocks for Delay.
type MockFeatureSource struct {
	Features []domain.Feature
	Err      error
	Delay    time.Duration

	calls atomic.Int64
}

func (m *MockFeatureSource) PoliceFeatures(
	ctx context.Context,
	center domain.Coordinates,
	radiusMeters int,
) ([]domain.Feature, error) {
	m.calls.Add(1)

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Features, nil
}

func (m *MockFeatureSource) Calls() int { return int(m.calls.Load()) }

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/ports"
)

const LinkedStationKey = "linked_station"

// storedStation is the persisted form of the linked station. Coordinates are
// pointers so a missing field can be told apart from zero.
type storedStation struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Address    string   `json:"address"`
	Contact    string   `json:"contact,omitempty"`
	DistanceKm float64  `json:"distance_km"`
	City       string   `json:"city"`
	State      string   `json:"state"`
}

func toStored(s domain.PoliceStation) storedStation {
	lat, lng := s.Coordinates.Lat, s.Coordinates.Lng
	return storedStation{
		ID:         s.ID,
		Name:       s.Name,
		Lat:        &lat,
		Lng:        &lng,
		Address:    s.Address,
		Contact:    s.Contact,
		DistanceKm: s.DistanceKm,
		City:       s.City,
		State:      s.State,
	}
}

func (s storedStation) toStation() (domain.PoliceStation, error) {
	if s.Lat == nil || s.Lng == nil {
		return domain.PoliceStation{}, fmt.Errorf("%w: linked station has no coordinates", domain.ErrCorruptState)
	}

	c := domain.Coordinates{Lat: *s.Lat, Lng: *s.Lng}
	if !c.IsValid() {
		return domain.PoliceStation{}, fmt.Errorf("%w: linked station coordinates are not finite", domain.ErrCorruptState)
	}

	return domain.PoliceStation{
		ID:          s.ID,
		Name:        s.Name,
		Coordinates: c,
		Address:     s.Address,
		Contact:     s.Contact,
		DistanceKm:  s.DistanceKm,
		City:        s.City,
		State:       s.State,
	}, nil
}

// LinkState owns the traveler's single linked station and its persisted form.
type LinkState struct {
	mu      sync.RWMutex
	store   ports.ProfileStore
	current *domain.PoliceStation
	log     *slog.Logger
}

func NewLinkState(store ports.ProfileStore, logger *slog.Logger) *LinkState {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkState{store: store, log: logger}
}

// Link records s as the linked station. Linking the station that is already
// linked is a no-op.
func (l *LinkState) Link(ctx context.Context, s domain.PoliceStation) error {
	if !s.Coordinates.IsValid() {
		return domain.InvalidInput("station %q has invalid coordinates", s.ID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil && *l.current == s {
		return nil
	}

	b, err := json.Marshal(toStored(s))
	if err != nil {
		return fmt.Errorf("link station %q: encode: %w", s.ID, err)
	}
	if err := l.store.Put(ctx, LinkedStationKey, b); err != nil {
		return fmt.Errorf("link station %q: %w", s.ID, err)
	}

	l.current = &s
	return nil
}

func (l *LinkState) Unlink(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(ctx, LinkedStationKey); err != nil {
		return fmt.Errorf("unlink station: %w", err)
	}
	l.current = nil
	return nil
}

// Restore loads the persisted link. A record that fails to decode or carries
// unusable coordinates is deleted and nothing is restored.
func (l *LinkState) Restore(ctx context.Context) (*domain.PoliceStation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok, err := l.store.Get(ctx, LinkedStationKey)
	if err != nil {
		l.log.WarnContext(ctx, "restore link: read failed", "err", err)
		return nil, false
	}
	if !ok {
		l.current = nil
		return nil, false
	}

	station, err := decodeStation(raw)
	if err != nil {
		l.log.WarnContext(ctx, "restore link: discarding persisted station", "err", err)
		if derr := l.store.Delete(ctx, LinkedStationKey); derr != nil {
			l.log.WarnContext(ctx, "restore link: delete failed", "err", derr)
		}
		l.current = nil
		return nil, false
	}

	l.current = &station
	cp := station
	return &cp, true
}

func decodeStation(raw []byte) (domain.PoliceStation, error) {
	var s storedStation
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.PoliceStation{}, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}
	return s.toStation()
}

// Current returns a copy of the linked station, or nil.
func (l *LinkState) Current() *domain.PoliceStation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil {
		return nil
	}
	cp := *l.current
	return &cp
}

// CurrentDistance reports the live distance in km from user to the linked
// station. ok is false without a valid user position or a link.
func (l *LinkState) CurrentDistance(user *domain.Coordinates) (float64, bool) {
	if user == nil || !user.IsValid() {
		return 0, false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil || !l.current.Coordinates.IsValid() {
		return 0, false
	}
	return domain.DistanceKm(*user, l.current.Coordinates), true
}

// Track recomputes the live distance for every position received until ctx is
// done or positions is closed.
func (l *LinkState) Track(ctx context.Context, positions <-chan domain.Coordinates, onDistance func(float64)) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-positions:
			if !ok {
				return
			}
			if d, ok := l.CurrentDistance(&p); ok {
				onDistance(d)
			}
		}
	}
}

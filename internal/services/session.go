package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// SearchQuery is either a place name or a coordinate. Coordinates win when both are set.
type SearchQuery struct {
	Place        string
	Coordinates  *domain.Coordinates
	RadiusMeters int
}

// SearchResult is one completed resolution. Seq is the issuance number.
type SearchResult struct {
	Seq      uint64
	Center   domain.Coordinates
	Place    domain.Place
	Stations []domain.PoliceStation
}

type SessionOptions struct {
	RadiusMeters int
	Logger       *slog.Logger
}

// Session is the single traveler's working context: the candidate list from the
// latest resolution, the linked station, the active ticket and the registration gate.
type Session struct {
	resolver     *Resolver
	link         *LinkState
	tickets      *TicketLifecycle
	registration *RegistrationService
	radius       int
	log          *slog.Logger

	seq atomic.Uint64

	mu         sync.RWMutex
	candidates []domain.PoliceStation
	position   *domain.Coordinates
}

func NewSession(
	resolver *Resolver,
	link *LinkState,
	tickets *TicketLifecycle,
	registration *RegistrationService,
	opts SessionOptions,
) *Session {
	if opts.RadiusMeters <= 0 {
		opts.RadiusMeters = DefaultSearchRadiusMeters
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Session{
		resolver:     resolver,
		link:         link,
		tickets:      tickets,
		registration: registration,
		radius:       opts.RadiusMeters,
		log:          opts.Logger,
	}
}

// Restore reloads persisted state at startup.
func (s *Session) Restore(ctx context.Context) {
	if st, ok := s.link.Restore(ctx); ok {
		s.log.InfoContext(ctx, "restored linked station", "station_id", st.ID)
	}
}

func (s *Session) radiusOr(r int) int {
	if r > 0 {
		return r
	}
	return s.radius
}

// Search resolves a place name or coordinate into nearby stations.
//
// Valid requests are numbered once their input has been checked. When a newer
// request was issued before this one completes, the result is returned with
// domain.ErrSuperseded and the candidate list is left alone.
func (s *Session) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	var res SearchResult

	switch {
	case q.Coordinates != nil:
		if !q.Coordinates.IsValid() {
			return res, domain.InvalidInput("search coordinates must be finite")
		}
		res.Seq = s.seq.Add(1)
		res.Center = *q.Coordinates

	case strings.TrimSpace(q.Place) != "":
		res.Seq = s.seq.Add(1)
		loc, err := s.resolver.GeocodeCity(ctx, q.Place)
		if err != nil {
			return res, fmt.Errorf("search %q: %w", q.Place, err)
		}
		res.Center = loc.Coordinates
		res.Place = loc.Place

	default:
		return res, domain.InvalidInput("search needs a place name or coordinates")
	}

	res.Stations = s.resolver.FindNearbyPoliceStations(ctx, res.Center, s.radiusOr(q.RadiusMeters))
	return res, s.apply(res, nil)
}

// Locate acquires the device position and resolves its address and nearby
// stations concurrently. Same last-request-wins rule as Search; the position
// is recorded only when the result is applied.
//
// A Locate whose context ends while resolving returns the context error and
// applies nothing, so a cancelled request never installs fallback stations.
func (s *Session) Locate(ctx context.Context, provider ports.PositionProvider, radiusMeters int) (SearchResult, error) {
	var res SearchResult

	pos, err := provider.CurrentPosition(ctx)
	if err != nil {
		return res, fmt.Errorf("locate: current position: %w", err)
	}
	if !pos.IsValid() {
		return res, domain.InvalidInput("locate: provider returned invalid coordinates")
	}
	res.Seq = s.seq.Add(1)
	res.Center = pos

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Place = s.resolver.ReverseGeocode(gctx, pos)
		return gctx.Err()
	})
	g.Go(func() error {
		res.Stations = s.resolver.FindNearbyPoliceStations(gctx, pos, s.radiusOr(radiusMeters))
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("locate: %w", err)
	}

	return res, s.apply(res, &pos)
}

// apply installs res as the current candidates, and pos as the current
// position when given, unless a newer request has been issued.
func (s *Session) apply(res SearchResult, pos *domain.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Seq != s.seq.Load() {
		return fmt.Errorf("resolution #%d: %w", res.Seq, domain.ErrSuperseded)
	}
	s.candidates = append([]domain.PoliceStation(nil), res.Stations...)
	if pos != nil {
		s.position = pos
	}
	return nil
}

// Candidates returns the station list of the latest applied resolution.
func (s *Session) Candidates() []domain.PoliceStation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PoliceStation(nil), s.candidates...)
}

// LinkCandidate links the candidate with the given id.
func (s *Session) LinkCandidate(ctx context.Context, id string) (domain.PoliceStation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.PoliceStation{}, domain.InvalidInput("station id must not be empty")
	}

	s.mu.RLock()
	var (
		found domain.PoliceStation
		ok    bool
	)
	for _, c := range s.candidates {
		if c.ID == id {
			found, ok = c, true
			break
		}
	}
	s.mu.RUnlock()

	if !ok {
		return domain.PoliceStation{}, &domain.NotFoundError{What: "station", Query: id}
	}
	if err := s.link.Link(ctx, found); err != nil {
		return domain.PoliceStation{}, err
	}
	return found, nil
}

func (s *Session) Unlink(ctx context.Context) error { return s.link.Unlink(ctx) }

func (s *Session) Linked() *domain.PoliceStation { return s.link.Current() }

// UpdatePosition records the traveler's latest position.
func (s *Session) UpdatePosition(c domain.Coordinates) error {
	if !c.IsValid() {
		return domain.InvalidInput("position must be finite")
	}
	s.setPosition(c)
	return nil
}

func (s *Session) setPosition(c domain.Coordinates) {
	s.mu.Lock()
	s.position = &c
	s.mu.Unlock()
}

// LinkDistance is the live distance in km from the last known position to the linked station.
func (s *Session) LinkDistance() (float64, bool) {
	s.mu.RLock()
	pos := s.position
	s.mu.RUnlock()
	return s.link.CurrentDistance(pos)
}

// Follow keeps the position current from provider updates and reports the
// live link distance for each one. It returns when ctx is done.
func (s *Session) Follow(ctx context.Context, provider ports.PositionProvider, onDistance func(float64)) {
	updates := provider.Watch(ctx)
	relay := make(chan domain.Coordinates)

	go func() {
		defer close(relay)
		for p := range updates {
			if !p.IsValid() {
				continue
			}
			s.setPosition(p)
			select {
			case relay <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	s.link.Track(ctx, relay, onDistance)
}

func (s *Session) ReverseGeocode(ctx context.Context, c domain.Coordinates) (domain.Place, error) {
	if !c.IsValid() {
		return domain.Place{}, domain.InvalidInput("coordinates must be finite")
	}
	return s.resolver.ReverseGeocode(ctx, c), nil
}

func (s *Session) Register(ctx context.Context, in RegistrationInput) (domain.Registration, error) {
	return s.registration.Register(ctx, in)
}

func (s *Session) Registration(ctx context.Context) (domain.Registration, bool) {
	return s.registration.Current(ctx)
}

// OpenTicket requires a completed registration.
func (s *Session) OpenTicket(ctx context.Context, in TicketInput) (domain.Ticket, error) {
	if _, ok := s.registration.Current(ctx); !ok {
		return domain.Ticket{}, domain.ErrNotRegistered
	}
	return s.tickets.Open(in)
}

func (s *Session) CloseTicket() bool { return s.tickets.Close() }

func (s *Session) TicketStatus() domain.Countdown { return s.tickets.Status() }

func (s *Session) ResyncTicket() (domain.Countdown, error) { return s.tickets.Resync() }

// Close releases the countdown ticker. State is left in place.
func (s *Session) Close() {
	s.tickets.Shutdown()
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"travel-ticket-service/internal/adapters/cache"
	"travel-ticket-service/internal/adapters/geodata"
	"travel-ticket-service/internal/domain"
)

func TestFindNearbyPointAndAreaFeatures(t *testing.T) {
	geocoder := geodata.NewMockGeocoder(map[string]domain.Location{"ranchi": ranchi})
	wayCenter := ranchi.Offset(0.002, 0.001)
	features := &geodata.MockFeatureSource{Features: []domain.Feature{
		domain.PointFeature{
			ID:       42,
			Position: ranchi.Offset(0.02, 0.02),
			TagSet:   map[string]string{"name": "Kotwali Police Station", "addr:city": "Ranchi"},
		},
		domain.AreaFeature{
			Structure: domain.KindWay,
			ID:        42,
			Center:    &wayCenter,
			TagSet:    map[string]string{"name:en": "Lalpur Thana", "phone": "+91 651 000000"},
		},
	}}
	r := NewResolver(geocoder, features, ResolverOptions{})

	loc, err := r.GeocodeCity(context.Background(), "ranchi")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}

	stations := r.FindNearbyPoliceStations(context.Background(), loc.Coordinates, 5000)
	if len(stations) != 2 {
		t.Fatalf("stations = %d, want 2", len(stations))
	}
	if stations[0].ID == stations[1].ID {
		t.Fatalf("ids collide: %q", stations[0].ID)
	}
	if stations[0].ID != "way_42" || stations[1].ID != "node_42" {
		t.Fatalf("order = [%s %s], want nearest first", stations[0].ID, stations[1].ID)
	}
	for _, s := range stations {
		if s.DistanceKm < 0 {
			t.Fatalf("negative distance for %s", s.ID)
		}
	}
	if stations[0].Name != "Lalpur Thana" || stations[0].Contact != "+91 651 000000" {
		t.Fatalf("unexpected area station %+v", stations[0])
	}
	if stations[1].Address != "Ranchi" || stations[1].City != "Ranchi" {
		t.Fatalf("unexpected point station %+v", stations[1])
	}
}

func TestFindNearbySortsAndTruncates(t *testing.T) {
	origin := domain.Coordinates{Lat: 28.6139, Lng: 77.2090}
	order := []int{7, 3, 14, 0, 9, 12, 1, 5, 11, 2, 13, 6, 8, 4, 10}

	var fs []domain.Feature
	for _, i := range order {
		fs = append(fs, domain.PointFeature{
			ID:       int64(i),
			Position: origin.Offset(0.001*float64(i+1), 0),
			TagSet:   map[string]string{"name": fmt.Sprintf("Station %d", i)},
		})
	}

	r := NewResolver(geodata.NewMockGeocoder(nil), &geodata.MockFeatureSource{Features: fs}, ResolverOptions{})
	got := r.FindNearbyPoliceStations(context.Background(), origin, 0)

	if len(got) != MaxNearbyStations {
		t.Fatalf("len = %d, want %d", len(got), MaxNearbyStations)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].DistanceKm > got[i].DistanceKm {
			t.Fatalf("not sorted at %d: %v > %v", i, got[i-1].DistanceKm, got[i].DistanceKm)
		}
	}
	if got[0].ID != "node_0" {
		t.Fatalf("nearest = %s, want node_0", got[0].ID)
	}
}

func TestFindNearbyDeduplicatesAndDropsUnusable(t *testing.T) {
	origin := domain.Coordinates{Lat: 19.076, Lng: 72.8777}
	fs := []domain.Feature{
		domain.PointFeature{ID: 1, Position: origin.Offset(0.01, 0), TagSet: map[string]string{"name": "First"}},
		domain.PointFeature{ID: 1, Position: origin.Offset(0.001, 0), TagSet: map[string]string{"name": "Second"}},
		domain.AreaFeature{Structure: domain.KindRelation, ID: 9, TagSet: map[string]string{"name": "No centre"}},
		domain.PointFeature{ID: 2, Position: origin.Offset(0.02, 0)},
	}

	r := NewResolver(geodata.NewMockGeocoder(nil), &geodata.MockFeatureSource{Features: fs}, ResolverOptions{})
	got := r.FindNearbyPoliceStations(context.Background(), origin, 1000)

	if len(got) != 2 {
		t.Fatalf("stations = %+v, want 2", got)
	}
	if got[0].Name != "First" {
		t.Fatalf("first occurrence should win, got %q", got[0].Name)
	}
	if got[1].Name != domain.DefaultStationName || got[1].Address != domain.AddressNotAvailable {
		t.Fatalf("defaults not applied: %+v", got[1])
	}
}

func assertFallback(t *testing.T, origin domain.Coordinates, got []domain.PoliceStation) {
	t.Helper()
	if len(got) != 3 {
		t.Fatalf("fallback len = %d, want 3", len(got))
	}
	for i, s := range got {
		if s.ID != fmt.Sprintf("fallback_%d", i) {
			t.Fatalf("id = %q", s.ID)
		}
		if !s.Coordinates.IsValid() || s.DistanceKm <= 0 {
			t.Fatalf("fallback station %+v has invalid coordinates or distance", s)
		}
	}
	if got[0].Name != "Local Police Station" || got[1].Name != "Central Police Station" || got[2].Name != "Traffic Police Station" {
		t.Fatalf("unexpected fallback names: %+v", got)
	}
}

func TestFindNearbyFallsBackOnFailure(t *testing.T) {
	origin := domain.Coordinates{Lat: 12.9716, Lng: 77.5946}
	r := NewResolver(geodata.NewMockGeocoder(nil), &geodata.MockFeatureSource{Err: errors.New("503 from upstream")}, ResolverOptions{})

	assertFallback(t, origin, r.FindNearbyPoliceStations(context.Background(), origin, 0))
}

func TestFindNearbyFallsBackOnTimeout(t *testing.T) {
	origin := domain.Coordinates{Lat: 12.9716, Lng: 77.5946}
	src := &geodata.MockFeatureSource{Delay: time.Second}
	r := NewResolver(geodata.NewMockGeocoder(nil), src, ResolverOptions{LookupTimeout: 20 * time.Millisecond})

	start := time.Now()
	got := r.FindNearbyPoliceStations(context.Background(), origin, 0)
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("lookup was not bounded by the client-side timeout")
	}
	assertFallback(t, origin, got)
}

func TestFindNearbyInvalidCenter(t *testing.T) {
	src := &geodata.MockFeatureSource{}
	r := NewResolver(geodata.NewMockGeocoder(nil), src, ResolverOptions{})

	got := r.FindNearbyPoliceStations(context.Background(), domain.Coordinates{Lat: 1, Lng: posInf()}, 0)
	if len(got) != 0 {
		t.Fatalf("got %+v, want empty", got)
	}
	if src.Calls() != 0 {
		t.Fatal("feature source queried with invalid coordinates")
	}
}

func TestFindNearbyCachesRealResultsOnly(t *testing.T) {
	origin := domain.Coordinates{Lat: 22.5726, Lng: 88.3639}
	src := &geodata.MockFeatureSource{Features: []domain.Feature{
		domain.PointFeature{ID: 5, Position: origin.Offset(0.003, 0)},
	}}
	r := NewResolver(geodata.NewMockGeocoder(nil), src, ResolverOptions{Stations: cache.NewStationLRU(16, time.Minute)})

	r.FindNearbyPoliceStations(context.Background(), origin, 2000)
	got := r.FindNearbyPoliceStations(context.Background(), origin, 2000)
	if src.Calls() != 1 {
		t.Fatalf("calls = %d, want 1 with a warm cache", src.Calls())
	}
	if len(got) != 1 || got[0].ID != "node_5" {
		t.Fatalf("cached result = %+v", got)
	}

	failing := &geodata.MockFeatureSource{Err: errors.New("down")}
	r2 := NewResolver(geodata.NewMockGeocoder(nil), failing, ResolverOptions{Stations: cache.NewStationLRU(16, time.Minute)})
	r2.FindNearbyPoliceStations(context.Background(), origin, 2000)
	r2.FindNearbyPoliceStations(context.Background(), origin, 2000)
	if failing.Calls() != 2 {
		t.Fatalf("calls = %d, fallback results must not be cached", failing.Calls())
	}
}

func TestGeocodeCityErrors(t *testing.T) {
	geocoder := geodata.NewMockGeocoder(map[string]domain.Location{"ranchi": ranchi})
	r := NewResolver(geocoder, &geodata.MockFeatureSource{}, ResolverOptions{})

	if _, err := r.GeocodeCity(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank: err = %v, want ErrInvalidInput", err)
	}
	if geocoder.Searches() != 0 {
		t.Fatal("blank query reached the geocoder")
	}

	var nf *domain.NotFoundError
	if _, err := r.GeocodeCity(context.Background(), "atlantis"); !errors.As(err, &nf) {
		t.Fatalf("unknown: err = %v, want NotFoundError", err)
	}

	geocoder.Err = errors.New("connection reset")
	var ge *domain.GeocodeError
	if _, err := r.GeocodeCity(context.Background(), "ranchi"); !errors.As(err, &ge) {
		t.Fatalf("transport: err = %v, want GeocodeError", err)
	}
}

func TestGeocodeCityUsesCache(t *testing.T) {
	geocoder := geodata.NewMockGeocoder(map[string]domain.Location{"ranchi": ranchi})
	memo := newMemGeocodeCache()
	r := NewResolver(geocoder, &geodata.MockFeatureSource{}, ResolverOptions{GeocodeCache: memo})

	for _, q := range []string{"Ranchi", "  ranchi ", "RANCHI"} {
		loc, err := r.GeocodeCity(context.Background(), q)
		if err != nil {
			t.Fatalf("geocode %q: %v", q, err)
		}
		if loc != ranchi {
			t.Fatalf("geocode %q = %+v", q, loc)
		}
	}
	if geocoder.Searches() != 1 {
		t.Fatalf("searches = %d, want 1", geocoder.Searches())
	}
	if _, ok := memo.data[strings.ToLower("ranchi")]; !ok {
		t.Fatal("result not stored under normalized key")
	}
}

func TestReverseGeocodeSwallowsErrors(t *testing.T) {
	geocoder := geodata.NewMockGeocoder(nil)
	geocoder.ReverseErr = errors.New("boom")
	r := NewResolver(geocoder, &geodata.MockFeatureSource{}, ResolverOptions{})

	if p := r.ReverseGeocode(context.Background(), ranchi.Coordinates); !p.IsEmpty() {
		t.Fatalf("place = %+v, want empty", p)
	}
}

// gatedGeocoder parks every Search until release is closed.
type gatedGeocoder struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	aborted atomic.Bool
}

func (g *gatedGeocoder) Search(ctx context.Context, query string) (domain.Location, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return ranchi, nil
	case <-ctx.Done():
		g.aborted.Store(true)
		return domain.Location{}, ctx.Err()
	}
}

func (g *gatedGeocoder) Reverse(context.Context, domain.Coordinates) (domain.Place, error) {
	return domain.Place{}, nil
}

func TestGeocodeCityCancelledCallerDoesNotFailOthers(t *testing.T) {
	geocoder := &gatedGeocoder{entered: make(chan struct{}), release: make(chan struct{})}
	r := NewResolver(geocoder, &geodata.MockFeatureSource{}, ResolverOptions{})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.GeocodeCity(ctxA, "Ranchi")
		errA <- err
	}()
	<-geocoder.entered

	type result struct {
		loc domain.Location
		err error
	}
	resB := make(chan result, 1)
	go func() {
		loc, err := r.GeocodeCity(context.Background(), "ranchi")
		resB <- result{loc, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller err = %v, want context.Canceled", err)
	}

	close(geocoder.release)
	got := <-resB
	if got.err != nil {
		t.Fatalf("waiting caller: %v", got.err)
	}
	if got.loc != ranchi {
		t.Fatalf("waiting caller loc = %+v", got.loc)
	}
	if geocoder.aborted.Load() {
		t.Fatal("upstream lookup was cancelled with the first caller")
	}
}

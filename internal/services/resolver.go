package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/platform/obs"
	"travel-ticket-service/internal/ports"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultSearchRadiusMeters = 10000
	MaxNearbyStations         = 10
	DefaultLookupTimeout      = 30 * time.Second
	DefaultGeocodeTimeout     = 15 * time.Second
)

type ResolverOptions struct {
	// Optional persistent memo for forward geocoding.
	GeocodeCache ports.GeocodeCache
	// Optional in-memory memo for station lookups.
	Stations ports.StationCache
	// Client-side bound on the whole station lookup.
	LookupTimeout time.Duration
	// Bound on a shared forward geocode; it outlives any single caller.
	GeocodeTimeout time.Duration
	Logger         *slog.Logger
}

// Resolver turns place names and coordinates into ranked nearby police stations.
type Resolver struct {
	geocoder ports.Geocoder
	features ports.FeatureSource
	geoCache ports.GeocodeCache
	stations ports.StationCache
	timeout  time.Duration
	geoWait  time.Duration
	log      *slog.Logger

	inflight singleflight.Group
}

func NewResolver(geocoder ports.Geocoder, features ports.FeatureSource, opts ResolverOptions) *Resolver {
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	if opts.GeocodeTimeout <= 0 {
		opts.GeocodeTimeout = DefaultGeocodeTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Resolver{
		geocoder: geocoder,
		features: features,
		geoCache: opts.GeocodeCache,
		stations: opts.Stations,
		timeout:  opts.LookupTimeout,
		geoWait:  opts.GeocodeTimeout,
		log:      opts.Logger,
	}
}

func normalizeQuery(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// GeocodeCity resolves a free-text place name to its best match.
//
// Returns *domain.NotFoundError when nothing matched and *domain.GeocodeError
// for transport or parse failures.
func (r *Resolver) GeocodeCity(ctx context.Context, name string) (_ domain.Location, err error) {
	defer obs.Time(ctx, "resolver.GeocodeCity")(&err)

	key := normalizeQuery(name)
	if key == "" {
		return domain.Location{}, domain.InvalidInput("place name must not be empty")
	}

	if r.geoCache != nil {
		loc, ok, cerr := r.geoCache.Get(ctx, key)
		if cerr != nil {
			r.log.WarnContext(ctx, "geocode cache read failed", "query", key, "err", cerr)
		} else if ok && loc.IsValid() {
			return loc, nil
		}
	}

	// Identical lookups in flight share one upstream call. The call runs on a
	// context detached from the caller that started it, so a cancelled caller
	// does not fail the others waiting on the same key.
	ch := r.inflight.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.geoWait)
		defer cancel()

		loc, err := r.geocoder.Search(sctx, strings.TrimSpace(name))
		if err != nil {
			return domain.Location{}, classifyGeocodeErr(key, err)
		}
		if !loc.IsValid() {
			return domain.Location{}, &domain.GeocodeError{Query: key, Err: errors.New("result has invalid coordinates")}
		}

		if r.geoCache != nil {
			if perr := r.geoCache.Put(sctx, key, loc); perr != nil {
				r.log.WarnContext(sctx, "geocode cache write failed", "query", key, "err", perr)
			}
		}
		return loc, nil
	})

	select {
	case <-ctx.Done():
		return domain.Location{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Location{}, res.Err
		}
		return res.Val.(domain.Location), nil
	}
}

func classifyGeocodeErr(query string, err error) error {
	var nf *domain.NotFoundError
	var ge *domain.GeocodeError
	if errors.As(err, &nf) || errors.As(err, &ge) {
		return err
	}
	return &domain.GeocodeError{Query: query, Err: err}
}

// ReverseGeocode is best effort: any failure yields an empty Place.
func (r *Resolver) ReverseGeocode(ctx context.Context, c domain.Coordinates) domain.Place {
	if !c.IsValid() {
		r.log.WarnContext(ctx, "reverse geocode skipped: invalid coordinates")
		return domain.Place{}
	}

	place, err := r.geocoder.Reverse(ctx, c)
	if err != nil {
		r.log.WarnContext(ctx, "reverse geocode failed", "lat", c.Lat, "lng", c.Lng, "err", err)
		return domain.Place{}
	}
	return place
}

// FindNearbyPoliceStations never fails. Upstream errors and timeouts produce
// the fixed fallback set; an invalid center produces an empty list.
func (r *Resolver) FindNearbyPoliceStations(
	ctx context.Context,
	center domain.Coordinates,
	radiusMeters int,
) []domain.PoliceStation {
	if !center.IsValid() {
		r.log.WarnContext(ctx, "station lookup skipped: invalid coordinates")
		return []domain.PoliceStation{}
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultSearchRadiusMeters
	}

	if r.stations != nil {
		if cached, ok := r.stations.Get(center, radiusMeters); ok {
			// The cache cell spans a few meters; distances are measured from this exact point.
			return remeasure(center, cached)
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	features, err := r.lookupFeatures(lookupCtx, center, radiusMeters)
	if err != nil {
		r.log.WarnContext(ctx, "station lookup failed, using fallback stations",
			"lat", center.Lat, "lng", center.Lng, "radius_m", radiusMeters, "err", err)
		return domain.FallbackStations(center)
	}

	stations := RankStations(center, features)
	if r.stations != nil {
		r.stations.Set(center, radiusMeters, stations)
	}
	return stations
}

func (r *Resolver) lookupFeatures(ctx context.Context, center domain.Coordinates, radiusMeters int) (_ []domain.Feature, err error) {
	defer obs.Time(ctx, "resolver.PoliceFeatures")(&err)

	features, err := r.features.PoliceFeatures(ctx, center, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("police features within %dm: %w", radiusMeters, err)
	}
	return features, nil
}

// RankStations converts features to stations, keeps the first occurrence of
// each id, sorts by distance (stable) and keeps the nearest MaxNearbyStations.
func RankStations(origin domain.Coordinates, features []domain.Feature) []domain.PoliceStation {
	seen := make(map[string]struct{}, len(features))
	stations := make([]domain.PoliceStation, 0, len(features))

	for _, f := range features {
		if f == nil {
			continue
		}
		s, ok := domain.StationFromFeature(origin, f)
		if !ok {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		stations = append(stations, s)
	}

	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].DistanceKm < stations[j].DistanceKm
	})

	if len(stations) > MaxNearbyStations {
		stations = stations[:MaxNearbyStations]
	}
	return stations
}

func remeasure(origin domain.Coordinates, stations []domain.PoliceStation) []domain.PoliceStation {
	out := make([]domain.PoliceStation, len(stations))
	for i, s := range stations {
		s.DistanceKm = domain.DistanceKm(origin, s.Coordinates)
		out[i] = s
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

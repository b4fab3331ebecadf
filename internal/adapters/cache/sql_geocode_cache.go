package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/platform/obs"
)

// SQLGeocodeCache is a Postgres-backed cache mapping place queries to locations.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch the cached location for a normalized query.
func (s *SQLGeocodeCache) Get(ctx context.Context, query string) (_ domain.Location, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Location{}, false, errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Location{}, false, errors.New("get geocode cache: query must not be empty")
	}

	q := `
	SELECT lat, lng, address, city, state, country
    FROM geocode_cache
    WHERE query = $1;
	`

	var loc domain.Location
	err = s.DB.QueryRowContext(ctx, q, query).Scan(
		&loc.Lat, &loc.Lng, &loc.Address, &loc.City, &loc.State, &loc.Country,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Location{}, false, nil
	}
	if err != nil {
		return domain.Location{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return loc, true, nil
}

// Store a query -> location mapping.
func (s *SQLGeocodeCache) Put(ctx context.Context, query string, loc domain.Location) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("insert geocode cache: empty query key")
	}
	if !loc.IsValid() {
		return fmt.Errorf("insert geocode cache query=%q: invalid coordinates", query)
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (query, lat, lng, address, city, state, country)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (query) DO UPDATE
	SET lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		address = EXCLUDED.address,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		country = EXCLUDED.country;
	`, query, loc.Lat, loc.Lng, loc.Address, loc.City, loc.State, loc.Country)
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}

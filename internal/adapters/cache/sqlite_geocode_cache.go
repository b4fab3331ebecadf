package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"travel-ticket-service/internal/domain"
)

// SQLite backed cache mapping place queries to resolved locations.
// Query keys are expected to be normalized by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch the cached location for a query.
func (s *SqliteGeocodeCache) Get(ctx context.Context, query string) (domain.Location, bool, error) {
	if s.DB == nil {
		return domain.Location{}, false, errors.New("geocode cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Location{}, false, errors.New("get geocode cache: query must not be empty")
	}

	q := `
	SELECT 
        lat,
        lng,
        address,
        city,
        state,
        country
    FROM geocode_cache
    WHERE query = ?;
	`

	var loc domain.Location
	err := s.DB.QueryRowContext(ctx, q, query).Scan(
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

// Store a query -> location mapping in the cache.
func (s *SqliteGeocodeCache) Put(ctx context.Context, query string, loc domain.Location) error {
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
	INSERT OR REPLACE INTO geocode_cache (
        query,
        lat,
        lng,
        address,
        city,
        state,
        country
    )
    VALUES (?, ?, ?, ?, ?, ?, ?);
	`, query, loc.Lat, loc.Lng, loc.Address, loc.City, loc.State, loc.Country)
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}

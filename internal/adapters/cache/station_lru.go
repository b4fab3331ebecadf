package cache

import (
	"fmt"
	"time"
	"travel-ticket-service/internal/domain"

	"github.com/bluele/gcache"
)

// StationLRU memoizes nearby-station lookups in memory.
// Keys round the query point to 4 decimals (about 11 m).
type StationLRU struct {
	c gcache.Cache
}

func NewStationLRU(size int, ttl time.Duration) *StationLRU {
	if size <= 0 {
		size = 256
	}
	b := gcache.New(size).LRU()
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &StationLRU{c: b.Build()}
}

func stationKey(center domain.Coordinates, radiusMeters int) string {
	return fmt.Sprintf("%.4f,%.4f,%d", center.Lat, center.Lng, radiusMeters)
}

// Get returns a copy of the cached stations.
func (s *StationLRU) Get(center domain.Coordinates, radiusMeters int) ([]domain.PoliceStation, bool) {
	// gcache reports misses and expired entries as KeyNotFoundError
	v, err := s.c.Get(stationKey(center, radiusMeters))
	if err != nil {
		return nil, false
	}

	stations, ok := v.([]domain.PoliceStation)
	if !ok {
		return nil, false
	}
	return append([]domain.PoliceStation(nil), stations...), true
}

func (s *StationLRU) Set(center domain.Coordinates, radiusMeters int, stations []domain.PoliceStation) {
	cp := append([]domain.PoliceStation(nil), stations...)
	_ = s.c.Set(stationKey(center, radiusMeters), cp)
}

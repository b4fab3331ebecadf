package services

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"travel-ticket-service/internal/domain"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

// tick blocks until the countdown goroutine takes the value.
func (t *fakeTicker) tick(tb testing.TB) {
	tb.Helper()
	select {
	case t.ch <- time.Time{}:
	case <-time.After(time.Second):
		tb.Fatal("tick not consumed")
	}
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) Tickers() []*fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTicker(nil), c.tickers...)
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

type memGeocodeCache struct {
	mu   sync.Mutex
	data map[string]domain.Location
}

func newMemGeocodeCache() *memGeocodeCache {
	return &memGeocodeCache{data: map[string]domain.Location{}}
}

func (c *memGeocodeCache) Get(ctx context.Context, q string) (domain.Location, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.data[q]
	return loc, ok, nil
}

func (c *memGeocodeCache) Put(ctx context.Context, q string, loc domain.Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[q] = loc
	return nil
}

var ist = time.FixedZone("IST", 5*3600+30*60)

var ranchi = domain.Location{
	Coordinates: domain.Coordinates{Lat: 23.3441, Lng: 85.3096},
	Place:       domain.Place{Address: "Ranchi, Jharkhand, India", City: "Ranchi", State: "Jharkhand", Country: "India"},
}

func posInf() float64 { return math.Inf(1) }

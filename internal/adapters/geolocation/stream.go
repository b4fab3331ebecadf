package geolocation

import (
	"context"
	"sync"
	"travel-ticket-service/internal/domain"
)

// Stream is a position provider fed by Push. Invalid coordinates are dropped.
// Watchers that fall behind miss intermediate updates; the newest one is kept.
type Stream struct {
	mu       sync.Mutex
	last     *domain.Coordinates
	ready    chan struct{}
	watchers map[chan domain.Coordinates]struct{}
}

func NewStream() *Stream {
	return &Stream{
		ready:    make(chan struct{}),
		watchers: make(map[chan domain.Coordinates]struct{}),
	}
}

// Push records a new position and forwards it to every watcher.
func (s *Stream) Push(c domain.Coordinates) bool {
	if !c.IsValid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	first := s.last == nil
	s.last = &c
	if first {
		close(s.ready)
	}

	for ch := range s.watchers {
		select {
		case ch <- c:
		default:
			// drop the stale value and deliver the newest
			select {
			case <-ch:
			default:
			}
			ch <- c
		}
	}
	return true
}

// CurrentPosition returns the latest pushed position, waiting for the first
// one until ctx is done.
func (s *Stream) CurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return domain.Coordinates{}, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.last, nil
}

func (s *Stream) Watch(ctx context.Context) <-chan domain.Coordinates {
	ch := make(chan domain.Coordinates, 1)

	s.mu.Lock()
	if s.last != nil {
		ch <- *s.last
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

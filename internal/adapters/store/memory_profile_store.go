package store

import (
	"context"
	"sync"
)

// MemoryProfileStore keeps records in process memory. Nothing survives a restart.
type MemoryProfileStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{data: make(map[string][]byte)}
}

func (s *MemoryProfileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryProfileStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryProfileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

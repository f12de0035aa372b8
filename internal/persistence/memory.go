package persistence

import (
	"context"
	"sync"
	"time"

	"ariproxy/pkg/health"
)

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// MemoryStore keeps bindings in process. A zero ttl never expires entries.
type MemoryStore[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]memoryEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore[K comparable, V any](ttl time.Duration) *MemoryStore[K, V] {
	return &MemoryStore[K, V]{
		entries: make(map[K]memoryEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore[K, V]) Put(ctx context.Context, key K, value V) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := memoryEntry[V]{value: value}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return zero, false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return zero, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore[K, V]) CheckHealth(ctx context.Context) health.Report {
	return health.Healthy("persistence.memory")
}

func (s *MemoryStore[K, V]) Close() error {
	return nil
}

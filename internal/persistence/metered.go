package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ariproxy/internal/metering"
	"ariproxy/pkg/health"
)

// MeteredStore times Put against the wrapped store and reports the timer
// through the metrics service. Get, CheckHealth and Close pass through.
//
// The stop marker is sent for failed puts too, tagged Failed, so no timer
// is left open when the underlying store rejects a write.
type MeteredStore[K comparable, V any] struct {
	store   KeyValueStore[K, V]
	metrics metering.Teller
	now     func() time.Time

	closeOnce sync.Once
	closeErr  error
}

func NewMeteredStore[K comparable, V any](store KeyValueStore[K, V], metrics metering.Teller) *MeteredStore[K, V] {
	if metrics == nil {
		metrics = metering.Discard
	}
	return &MeteredStore[K, V]{
		store:   store,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *MeteredStore[K, V]) Put(ctx context.Context, key K, value V) error {
	handle := uuid.NewString()
	s.metrics.Tell(metering.PersistenceUpdateTimerStart{Handle: handle, At: s.now()})

	err := s.store.Put(ctx, key, value)

	s.metrics.Tell(metering.PersistenceUpdateTimerStop{Handle: handle, At: s.now(), Failed: err != nil})
	return err
}

func (s *MeteredStore[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	return s.store.Get(ctx, key)
}

func (s *MeteredStore[K, V]) CheckHealth(ctx context.Context) health.Report {
	return s.store.CheckHealth(ctx)
}

func (s *MeteredStore[K, V]) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.store.Close()
	})
	return s.closeErr
}

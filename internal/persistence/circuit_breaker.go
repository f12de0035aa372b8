package persistence

import (
	"context"
	"fmt"

	"ariproxy/internal/config"
	"ariproxy/pkg/circuitbreaker"
	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/health"
)

type lookup[V any] struct {
	value V
	found bool
}

// CircuitBreakerStore stops calling a failing store until the breaker
// half-opens. A disabled breaker passes every call through.
type CircuitBreakerStore[K comparable, V any] struct {
	store KeyValueStore[K, V]
	cb    *circuitbreaker.Wrapper
}

func NewCircuitBreakerStore[K comparable, V any](store KeyValueStore[K, V], name string, cfg config.CircuitBreakerConfig) *CircuitBreakerStore[K, V] {
	if !cfg.Enabled {
		return &CircuitBreakerStore[K, V]{store: store}
	}

	return &CircuitBreakerStore[K, V]{
		store: store,
		cb:    circuitbreaker.NewWrapper(circuitbreaker.NewSettings(name, cfg)),
	}
}

func (s *CircuitBreakerStore[K, V]) Put(ctx context.Context, key K, value V) error {
	if s.cb == nil {
		return s.store.Put(ctx, key, value)
	}

	_, err := circuitbreaker.Do(ctx, s.cb, func() (struct{}, error) {
		return struct{}{}, s.store.Put(ctx, key, value)
	})
	return s.breakerError(err)
}

func (s *CircuitBreakerStore[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	if s.cb == nil {
		return s.store.Get(ctx, key)
	}

	result, err := circuitbreaker.Do(ctx, s.cb, func() (lookup[V], error) {
		value, found, err := s.store.Get(ctx, key)
		return lookup[V]{value: value, found: found}, err
	})
	if err != nil {
		var zero V
		return zero, false, s.breakerError(err)
	}
	return result.value, result.found, nil
}

func (s *CircuitBreakerStore[K, V]) CheckHealth(ctx context.Context) health.Report {
	report := s.store.CheckHealth(ctx)
	if report.OK() && s.IsOpen() {
		return health.Unhealthy(report.Name, fmt.Errorf("circuit breaker %s is open", s.cb.Name()))
	}
	return report
}

func (s *CircuitBreakerStore[K, V]) Close() error {
	return s.store.Close()
}

func (s *CircuitBreakerStore[K, V]) State() string {
	if s.cb == nil {
		return "disabled"
	}
	return s.cb.State().String()
}

func (s *CircuitBreakerStore[K, V]) IsOpen() bool {
	if s.cb == nil {
		return false
	}
	return s.cb.IsOpen()
}

func (s *CircuitBreakerStore[K, V]) breakerError(err error) error {
	if err == nil {
		return nil
	}
	if circuitbreaker.Rejected(err) {
		return apperrors.ErrPersistence.WithCause(
			apperrors.ErrUnavailable.WithCause(fmt.Errorf("circuit breaker is open for %s: %w", s.cb.Name(), err)),
		)
	}
	return err
}

package persistence

import (
	"context"

	"ariproxy/pkg/health"
)

// KeyValueStore is the storage capability call context bindings live in.
// Get reports a missing key with found == false and a nil error.
type KeyValueStore[K comparable, V any] interface {
	Put(ctx context.Context, key K, value V) error
	Get(ctx context.Context, key K) (value V, found bool, err error)
	CheckHealth(ctx context.Context) health.Report
	Close() error
}

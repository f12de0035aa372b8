package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ariproxy/internal/config"
	apperrors "ariproxy/pkg/errors"
)

func TestCircuitBreakerStore_Disabled(t *testing.T) {
	delegate := newScriptedStore()
	store := NewCircuitBreakerStore[string, string](delegate, "test-disabled", config.CircuitBreakerConfig{})

	require.NoError(t, store.Put(context.Background(), "k", "v"))
	value, found, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
	assert.Equal(t, "disabled", store.State())
	assert.False(t, store.IsOpen())
}

func TestCircuitBreakerStore_OpensOnFailures(t *testing.T) {
	delegate := newScriptedStore()
	delegate.putErr = errors.New("connection refused")
	store := NewCircuitBreakerStore[string, string](delegate, "test-open", config.CircuitBreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	})
	ctx := context.Background()

	assert.ErrorIs(t, store.Put(ctx, "k", "v"), delegate.putErr)
	assert.ErrorIs(t, store.Put(ctx, "k", "v"), delegate.putErr)
	assert.True(t, store.IsOpen())

	err := store.Put(ctx, "k", "v")
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Equal(t, 2, delegate.puts)

	assert.False(t, store.CheckHealth(ctx).OK())
}

func TestCircuitBreakerStore_GetNotFoundIsNotAFailure(t *testing.T) {
	delegate := newScriptedStore()
	store := NewCircuitBreakerStore[string, string](delegate, "test-get", config.CircuitBreakerConfig{
		Enabled:      true,
		FailureRatio: 0.5,
		MinRequests:  1,
	})

	for i := 0; i < 5; i++ {
		_, found, err := store.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.False(t, store.IsOpen())
}

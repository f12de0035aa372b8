package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ariproxy/internal/metering"
	apperrors "ariproxy/pkg/errors"
)

func timerPair(t *testing.T, messages []metering.Message) (metering.PersistenceUpdateTimerStart, metering.PersistenceUpdateTimerStop) {
	t.Helper()
	require.Len(t, messages, 2)

	start, ok := messages[0].(metering.PersistenceUpdateTimerStart)
	require.True(t, ok, "first message must be the start marker")
	stop, ok := messages[1].(metering.PersistenceUpdateTimerStop)
	require.True(t, ok, "second message must be the stop marker")
	return start, stop
}

func TestMeteredStore_PutSuccess(t *testing.T) {
	teller := &recordingTeller{}
	delegate := newScriptedStore()
	store := NewMeteredStore[string, string](delegate, teller)

	require.NoError(t, store.Put(context.Background(), "k", "v"))

	start, stop := timerPair(t, teller.recorded())
	assert.NotEmpty(t, start.Handle)
	assert.Equal(t, start.Handle, stop.Handle)
	assert.False(t, stop.Failed)
	assert.False(t, stop.At.Before(start.At))
	assert.Equal(t, "v", delegate.values["k"])
}

func TestMeteredStore_PutFailureStillStopsTimer(t *testing.T) {
	teller := &recordingTeller{}
	delegate := newScriptedStore()
	delegate.putErr = apperrors.ErrPersistence.WithMessage("write rejected")
	store := NewMeteredStore[string, string](delegate, teller)

	err := store.Put(context.Background(), "k", "v")
	require.Error(t, err)
	assert.Same(t, delegate.putErr, err)

	start, stop := timerPair(t, teller.recorded())
	assert.Equal(t, start.Handle, stop.Handle)
	assert.True(t, stop.Failed)
}

func TestMeteredStore_HandlesAreUnique(t *testing.T) {
	teller := &recordingTeller{}
	store := NewMeteredStore[string, string](newScriptedStore(), teller)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Put(context.Background(), "k", "v"))
		}()
	}
	wg.Wait()

	starts := make(map[string]int)
	stops := make(map[string]int)
	for _, msg := range teller.recorded() {
		switch m := msg.(type) {
		case metering.PersistenceUpdateTimerStart:
			starts[m.Handle]++
		case metering.PersistenceUpdateTimerStop:
			stops[m.Handle]++
		}
	}
	assert.Len(t, starts, 20)
	assert.Equal(t, starts, stops)
}

func TestMeteredStore_PassThrough(t *testing.T) {
	ctx := context.Background()
	teller := &recordingTeller{}
	delegate := newScriptedStore()
	delegate.values["k"] = "v"
	store := NewMeteredStore[string, string](delegate, teller)

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)

	assert.Equal(t, "persistence.scripted", store.CheckHealth(ctx).Name)
	assert.Empty(t, teller.recorded())
}

func TestMeteredStore_CloseOnce(t *testing.T) {
	delegate := newScriptedStore()
	store := NewMeteredStore[string, string](delegate, nil)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.Equal(t, 1, delegate.closes)
}

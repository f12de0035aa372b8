package metering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ariproxy/internal/ari"
	"ariproxy/internal/constants"
)

func TestDetermineGatherers(t *testing.T) {
	tests := []struct {
		name        string
		messageType string
		want        []Descriptor
	}{
		{
			name:        "stasis start",
			messageType: ari.StasisStart,
			want: []Descriptor{
				{Name: ari.StasisStart, Kind: KindEventCounter},
				{Name: constants.CounterCallsStarted, Kind: KindCounter},
				{Name: callTimer, Kind: KindCallTimerStart},
			},
		},
		{
			name:        "stasis end",
			messageType: ari.StasisEnd,
			want: []Descriptor{
				{Name: ari.StasisEnd, Kind: KindEventCounter},
				{Name: constants.CounterCallsEnded, Kind: KindCounter},
				{Name: callTimer, Kind: KindCallTimerStop},
			},
		},
		{
			name:        "plain event",
			messageType: ari.ChannelVarset,
			want:        []Descriptor{{Name: ari.ChannelVarset, Kind: KindEventCounter}},
		},
		{
			name:        "unknown type",
			messageType: "Foo",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineGatherers(tt.messageType))
		})
	}
}

func TestDetermineGatherers_Deterministic(t *testing.T) {
	for _, messageType := range ari.KnownTypes() {
		assert.Equal(t, DetermineGatherers(messageType), DetermineGatherers(messageType), messageType)
	}
}

func TestDescriptor_Emission(t *testing.T) {
	var resolved int
	supplier := func(ctx context.Context) (string, error) {
		resolved++
		return "cc-1", nil
	}
	at := time.Unix(1700000000, 0)

	assert.Equal(t, AriEventObserved{Type: ari.StasisStart},
		Descriptor{Name: ari.StasisStart, Kind: KindEventCounter}.Emission(supplier, at))
	assert.Equal(t, IncreaseCounter{Name: constants.CounterCallsStarted},
		Descriptor{Name: constants.CounterCallsStarted, Kind: KindCounter}.Emission(supplier, at))

	start, ok := Descriptor{Name: callTimer, Kind: KindCallTimerStart}.Emission(supplier, at).(CallTimerStart)
	require.True(t, ok)
	assert.Equal(t, at, start.At)

	stop, ok := Descriptor{Name: callTimer, Kind: KindCallTimerStop}.Emission(supplier, at).(CallTimerStop)
	require.True(t, ok)
	assert.Equal(t, at, stop.At)

	assert.Zero(t, resolved, "building emissions must not resolve the call context")
}

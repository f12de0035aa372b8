package ari

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ariproxy/pkg/models"
)

func mustParse(t *testing.T, frame string) Message {
	t.Helper()
	msg, err := Parse([]byte(frame))
	require.NoError(t, err)
	return msg
}

func TestLookupType(t *testing.T) {
	tests := []struct {
		name           string
		createsContext bool
		correlated     bool
	}{
		{name: StasisStart, createsContext: true, correlated: true},
		{name: ChannelCreated, createsContext: true, correlated: true},
		{name: BridgeCreated, createsContext: true, correlated: true},
		{name: Dial, createsContext: true, correlated: true},
		{name: StasisEnd, correlated: true},
		{name: ChannelVarset, correlated: true},
		{name: PlaybackFinished, correlated: true},
		{name: ApplicationReplaced},
		{name: DeviceStateChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messageType, ok := LookupType(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.createsContext, messageType.CreatesContext)
			assert.Equal(t, tt.correlated, messageType.Correlated())
		})
	}

	_, ok := LookupType("Foo")
	assert.False(t, ok)
}

func TestMessageType_ExtractResources(t *testing.T) {
	tests := []struct {
		name        string
		messageType string
		frame       string
		want        []models.AriResource
	}{
		{
			name:        "channel event",
			messageType: StasisStart,
			frame:       `{"type":"StasisStart","channel":{"id":"ch-1"}}`,
			want:        []models.AriResource{{Type: models.ResourceChannel, ID: "ch-1"}},
		},
		{
			name:        "channel entered bridge",
			messageType: ChannelEnteredBridge,
			frame:       `{"type":"ChannelEnteredBridge","channel":{"id":"ch-1"},"bridge":{"id":"br-1"}}`,
			want: []models.AriResource{
				{Type: models.ResourceChannel, ID: "ch-1"},
				{Type: models.ResourceBridge, ID: "br-1"},
			},
		},
		{
			name:        "dial uses peer",
			messageType: Dial,
			frame:       `{"type":"Dial","peer":{"id":"ch-2"},"caller":{"id":"ch-1"}}`,
			want:        []models.AriResource{{Type: models.ResourceChannel, ID: "ch-2"}},
		},
		{
			name:        "playback on bridge",
			messageType: PlaybackStarted,
			frame:       `{"type":"PlaybackStarted","playback":{"id":"pb-1","target_uri":"bridge:br-1"}}`,
			want: []models.AriResource{
				{Type: models.ResourceBridge, ID: "br-1"},
				{Type: models.ResourcePlayback, ID: "pb-1"},
			},
		},
		{
			name:        "recording with unknown target scheme",
			messageType: RecordingStarted,
			frame:       `{"type":"RecordingStarted","recording":{"name":"rec-1","target_uri":"endpoint:PJSIP/1"}}`,
			want:        []models.AriResource{{Type: models.ResourceRecording, ID: "rec-1"}},
		},
		{
			name:        "missing identifier",
			messageType: StasisEnd,
			frame:       `{"type":"StasisEnd"}`,
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messageType, ok := LookupType(tt.messageType)
			require.True(t, ok)
			assert.Equal(t, tt.want, messageType.ExtractResources(mustParse(t, tt.frame)))
		})
	}
}

func TestMessageType_Hint(t *testing.T) {
	stasisStart, _ := LookupType(StasisStart)
	assert.Equal(t, "cc-42", stasisStart.Hint(mustParse(t,
		`{"type":"StasisStart","channel":{"id":"ch-1","channelvars":{"CALL_CONTEXT":"cc-42"}}}`)))
	assert.Empty(t, stasisStart.Hint(mustParse(t, `{"type":"StasisStart","channel":{"id":"ch-1"}}`)))

	bridgeCreated, _ := LookupType(BridgeCreated)
	assert.Empty(t, bridgeCreated.Hint(mustParse(t, `{"type":"BridgeCreated","bridge":{"id":"br-1"}}`)))
}

func TestKnownTypes(t *testing.T) {
	names := KnownTypes()
	assert.Contains(t, names, StasisStart)
	assert.Contains(t, names, ApplicationReplaced)
	assert.NotContains(t, names, "Foo")
}

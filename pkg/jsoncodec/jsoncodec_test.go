package jsoncodec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func TestMarshal_KeepsRawPayload(t *testing.T) {
	data, err := Marshal(envelope{Type: "StasisStart", Payload: json.RawMessage(`{"channel":{"id":"ch-1"}}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"StasisStart","payload":{"channel":{"id":"ch-1"}}}`, string(data))
}

func TestUnmarshal(t *testing.T) {
	var out envelope
	require.NoError(t, Unmarshal([]byte(`{"type":"StasisEnd","payload":{}}`), &out))
	assert.Equal(t, "StasisEnd", out.Type)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"type":"Dial"}`)))
	assert.False(t, Valid([]byte(`{"type":`)))
}

package ari

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ariproxy/pkg/errors"
)

func TestParse(t *testing.T) {
	t.Run("valid frame", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"StasisStart","channel":{"id":"ch-1"}}`))
		require.NoError(t, err)

		messageType, ok := msg.Type()
		assert.True(t, ok)
		assert.Equal(t, "StasisStart", messageType)
	})

	t.Run("invalid frame", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":`))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestMessage_Value(t *testing.T) {
	msg, err := Parse([]byte(`{
		"type": "StasisStart",
		"channel": {
			"id": "ch-1",
			"channelvars": {"CALL_CONTEXT": "cc-42", "EMPTY": null}
		},
		"args": [1, 2]
	}`))
	require.NoError(t, err)

	tests := []struct {
		name  string
		path  string
		want  string
		found bool
	}{
		{name: "nested field", path: "channel.id", want: "ch-1", found: true},
		{name: "deep field", path: "channel.channelvars.CALL_CONTEXT", want: "cc-42", found: true},
		{name: "null field", path: "channel.channelvars.EMPTY", found: false},
		{name: "missing field", path: "bridge.id", found: false},
		{name: "empty path", path: "", found: false},
		{name: "array element", path: "args.1", want: "2", found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := msg.Value(tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessage_TypeMissing(t *testing.T) {
	msg, err := Parse([]byte(`{"channel":{"id":"ch-1"}}`))
	require.NoError(t, err)

	_, ok := msg.Type()
	assert.False(t, ok)
}

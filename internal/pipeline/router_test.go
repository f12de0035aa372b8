package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ariproxy/pkg/errors"
)

func TestRouter_Topic(t *testing.T) {
	router, err := NewRouter("ari-commands", "ari-events-and-responses", map[string]string{
		"channeluserevent": "Commands",
		"StasisEnd":        "events",
	})
	require.NoError(t, err)

	tests := []struct {
		messageType string
		want        string
	}{
		{messageType: "ChannelUserevent", want: "ari-commands"},
		{messageType: "StasisEnd", want: "ari-events-and-responses"},
		{messageType: "StasisStart", want: "ari-events-and-responses"},
		{messageType: "Foo", want: "ari-events-and-responses"},
	}
	for _, tt := range tests {
		t.Run(tt.messageType, func(t *testing.T) {
			assert.Equal(t, tt.want, router.Topic(tt.messageType))
		})
	}
	assert.Equal(t, "ari-commands", router.CommandsTopic())
}

func TestNewRouter_InvalidRoute(t *testing.T) {
	_, err := NewRouter("c", "e", map[string]string{"StasisStart": "dlq"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRouter_UnknownOverrides(t *testing.T) {
	router, err := NewRouter("ari-commands", "ari-events-and-responses", map[string]string{
		"channeluserevent": "commands",
		"StasisEnd":        "events",
		"ChannelTypo":      "commands",
		"bogus":            "events",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bogus", "channeltypo"}, router.UnknownOverrides())

	empty, err := NewRouter("ari-commands", "ari-events-and-responses", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.UnknownOverrides())
}

package models

import "encoding/json"

// OutputRecord is a keyed record bound for the output log. Key is always a
// resolved call context.
type OutputRecord struct {
	Topic string
	Key   string
	Value string
}

// AriMessageEnvelope is the value written for every translated ARI message.
// CommandsTopic tells consumers where commands for this call are expected.
type AriMessageEnvelope struct {
	Type          string          `json:"type"`
	CommandsTopic string          `json:"commandsTopic"`
	Payload       json.RawMessage `json:"payload"`
	CallContext   string          `json:"callContext"`
	Resources     []AriResource   `json:"resources,omitempty"`
}

type AriResource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

const (
	ResourceChannel   = "CHANNEL"
	ResourceBridge    = "BRIDGE"
	ResourcePlayback  = "PLAYBACK"
	ResourceRecording = "RECORDING"
)

package ari

import (
	"strings"

	"ariproxy/pkg/models"
)

const (
	ApplicationReplaced      = "ApplicationReplaced"
	BridgeAttendedTransfer   = "BridgeAttendedTransfer"
	BridgeBlindTransfer      = "BridgeBlindTransfer"
	BridgeCreated            = "BridgeCreated"
	BridgeDestroyed          = "BridgeDestroyed"
	BridgeMerged             = "BridgeMerged"
	BridgeVideoSourceChanged = "BridgeVideoSourceChanged"
	ChannelCallerID          = "ChannelCallerId"
	ChannelConnectedLine     = "ChannelConnectedLine"
	ChannelCreated           = "ChannelCreated"
	ChannelDestroyed         = "ChannelDestroyed"
	ChannelDialplan          = "ChannelDialplan"
	ChannelDtmfReceived      = "ChannelDtmfReceived"
	ChannelEnteredBridge     = "ChannelEnteredBridge"
	ChannelHangupRequest     = "ChannelHangupRequest"
	ChannelHold              = "ChannelHold"
	ChannelLeftBridge        = "ChannelLeftBridge"
	ChannelStateChange       = "ChannelStateChange"
	ChannelTalkingFinished   = "ChannelTalkingFinished"
	ChannelTalkingStarted    = "ChannelTalkingStarted"
	ChannelUnhold            = "ChannelUnhold"
	ChannelUserevent         = "ChannelUserevent"
	ChannelVarset            = "ChannelVarset"
	DeviceStateChanged       = "DeviceStateChanged"
	Dial                     = "Dial"
	EndpointStateChange      = "EndpointStateChange"
	PlaybackContinuing       = "PlaybackContinuing"
	PlaybackFinished         = "PlaybackFinished"
	PlaybackStarted          = "PlaybackStarted"
	RecordingFailed          = "RecordingFailed"
	RecordingFinished        = "RecordingFinished"
	RecordingStarted         = "RecordingStarted"
	StasisEnd                = "StasisEnd"
	StasisStart              = "StasisStart"
	TextMessageReceived      = "TextMessageReceived"
)

const (
	ChannelIDPath   = "channel.id"
	ChannelHintPath = "channel.channelvars.CALL_CONTEXT"
	peerHintPath    = "peer.channelvars.CALL_CONTEXT"
)

// ResourceLocator finds one resource identifier in a message. A locator
// without a Type reads an ARI target URI ("channel:<id>", "bridge:<id>")
// and takes the type from its scheme.
type ResourceLocator struct {
	Type string
	Path string
}

// MessageType describes how a message of one type is correlated. The first
// resource found is the identifier used for call context resolution.
type MessageType struct {
	Name           string
	Resources      []ResourceLocator
	HintPath       string
	CreatesContext bool
}

var (
	channelID   = ResourceLocator{Type: models.ResourceChannel, Path: ChannelIDPath}
	bridgeID    = ResourceLocator{Type: models.ResourceBridge, Path: "bridge.id"}
	peerID      = ResourceLocator{Type: models.ResourceChannel, Path: "peer.id"}
	playbackID  = ResourceLocator{Type: models.ResourcePlayback, Path: "playback.id"}
	recordingID = ResourceLocator{Type: models.ResourceRecording, Path: "recording.name"}

	playbackTarget  = ResourceLocator{Path: "playback.target_uri"}
	recordingTarget = ResourceLocator{Path: "recording.target_uri"}
)

var messageTypes = buildMessageTypes()

func buildMessageTypes() map[string]MessageType {
	types := make(map[string]MessageType)
	add := func(t MessageType) {
		types[t.Name] = t
	}

	channelEvent := func(name string, createsContext bool) MessageType {
		return MessageType{
			Name:           name,
			Resources:      []ResourceLocator{channelID},
			HintPath:       ChannelHintPath,
			CreatesContext: createsContext,
		}
	}
	bridgeEvent := func(name string, createsContext bool) MessageType {
		return MessageType{
			Name:           name,
			Resources:      []ResourceLocator{bridgeID},
			CreatesContext: createsContext,
		}
	}

	add(channelEvent(StasisStart, true))
	add(channelEvent(ChannelCreated, true))
	for _, name := range []string{
		StasisEnd,
		ChannelCallerID,
		ChannelConnectedLine,
		ChannelDestroyed,
		ChannelDialplan,
		ChannelDtmfReceived,
		ChannelHangupRequest,
		ChannelHold,
		ChannelStateChange,
		ChannelTalkingFinished,
		ChannelTalkingStarted,
		ChannelUnhold,
		ChannelUserevent,
		ChannelVarset,
	} {
		add(channelEvent(name, false))
	}

	add(bridgeEvent(BridgeCreated, true))
	for _, name := range []string{
		BridgeDestroyed,
		BridgeMerged,
		BridgeVideoSourceChanged,
		BridgeBlindTransfer,
		BridgeAttendedTransfer,
	} {
		add(bridgeEvent(name, false))
	}

	for _, name := range []string{ChannelEnteredBridge, ChannelLeftBridge} {
		add(MessageType{
			Name:      name,
			Resources: []ResourceLocator{channelID, bridgeID},
			HintPath:  ChannelHintPath,
		})
	}

	add(MessageType{
		Name:           Dial,
		Resources:      []ResourceLocator{peerID},
		HintPath:       peerHintPath,
		CreatesContext: true,
	})

	for _, name := range []string{PlaybackStarted, PlaybackContinuing, PlaybackFinished} {
		add(MessageType{Name: name, Resources: []ResourceLocator{playbackTarget, playbackID}})
	}
	for _, name := range []string{RecordingStarted, RecordingFinished, RecordingFailed} {
		add(MessageType{Name: name, Resources: []ResourceLocator{recordingTarget, recordingID}})
	}

	// Not tied to a call: counted, never translated.
	for _, name := range []string{
		ApplicationReplaced,
		DeviceStateChanged,
		EndpointStateChange,
		TextMessageReceived,
	} {
		add(MessageType{Name: name})
	}

	return types
}

func LookupType(name string) (MessageType, bool) {
	t, ok := messageTypes[name]
	return t, ok
}

// KnownTypes lists every registered message type name.
func KnownTypes() []string {
	names := make([]string, 0, len(messageTypes))
	for name := range messageTypes {
		names = append(names, name)
	}
	return names
}

// ExtractResources returns the resources of msg in locator order, skipping
// the ones that are absent.
func (t MessageType) ExtractResources(msg Message) []models.AriResource {
	var resources []models.AriResource
	for _, locator := range t.Resources {
		value, ok := msg.Value(locator.Path)
		if !ok || value == "" {
			continue
		}
		resourceType := locator.Type
		if resourceType == "" {
			resourceType, value, ok = parseTargetURI(value)
			if !ok {
				continue
			}
		}
		resources = append(resources, models.AriResource{Type: resourceType, ID: value})
	}
	return resources
}

// Correlated reports whether messages of this type belong to a call.
func (t MessageType) Correlated() bool {
	return len(t.Resources) > 0
}

func (t MessageType) Hint(msg Message) string {
	hint, _ := msg.Value(t.HintPath)
	return hint
}

func parseTargetURI(uri string) (string, string, bool) {
	scheme, id, found := strings.Cut(uri, ":")
	if !found || id == "" {
		return "", "", false
	}
	switch scheme {
	case "channel":
		return models.ResourceChannel, id, true
	case "bridge":
		return models.ResourceBridge, id, true
	default:
		return "", "", false
	}
}

package metering

import (
	"time"

	"ariproxy/internal/ari"
	"ariproxy/internal/constants"
)

type Kind int

const (
	KindEventCounter Kind = iota
	KindCounter
	KindCallTimerStart
	KindCallTimerStop
)

func (k Kind) String() string {
	switch k {
	case KindEventCounter:
		return "event_counter"
	case KindCounter:
		return "counter"
	case KindCallTimerStart:
		return "call_timer_start"
	case KindCallTimerStop:
		return "call_timer_stop"
	default:
		return "unknown"
	}
}

// Descriptor says what to measure for a message type. The call context is
// bound only when the descriptor is turned into a Message.
type Descriptor struct {
	Name string
	Kind Kind
}

// Emission binds supplier and the observation time. Counters ignore the
// supplier, so building them never triggers a resolution.
func (d Descriptor) Emission(supplier CallContextSupplier, at time.Time) Message {
	switch d.Kind {
	case KindEventCounter:
		return AriEventObserved{Type: d.Name}
	case KindCallTimerStart:
		return CallTimerStart{CallContext: supplier, At: at}
	case KindCallTimerStop:
		return CallTimerStop{CallContext: supplier, At: at}
	default:
		return IncreaseCounter{Name: d.Name}
	}
}

const callTimer = "CallTimer"

// DetermineGatherers maps a message type to its descriptors. Unknown types
// yield nil.
func DetermineGatherers(messageType string) []Descriptor {
	if _, ok := ari.LookupType(messageType); !ok {
		return nil
	}

	descriptors := []Descriptor{{Name: messageType, Kind: KindEventCounter}}

	switch messageType {
	case ari.StasisStart:
		descriptors = append(descriptors,
			Descriptor{Name: constants.CounterCallsStarted, Kind: KindCounter},
			Descriptor{Name: callTimer, Kind: KindCallTimerStart},
		)
	case ari.StasisEnd:
		descriptors = append(descriptors,
			Descriptor{Name: constants.CounterCallsEnded, Kind: KindCounter},
			Descriptor{Name: callTimer, Kind: KindCallTimerStop},
		)
	}

	return descriptors
}

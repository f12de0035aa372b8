package metering

import (
	"time"
)

// Message is anything the metrics service accepts. Senders never wait for
// a reply.
type Message interface {
	metricMessage()
}

// Teller is the fire-and-forget side of the metrics service.
type Teller interface {
	Tell(msg Message)
}

type IncreaseCounter struct {
	Name string
}

type AriEventObserved struct {
	Type string
}

// PersistenceUpdateTimerStart and PersistenceUpdateTimerStop are paired by
// Handle. At is taken by the sender so inbox latency does not skew the
// measured duration.
type PersistenceUpdateTimerStart struct {
	Handle string
	At     time.Time
}

type PersistenceUpdateTimerStop struct {
	Handle string
	At     time.Time
	Failed bool
}

// CallTimerStart and CallTimerStop carry a lazily resolved call context; the
// service evaluates CallContext only when it handles the message.
type CallTimerStart struct {
	CallContext CallContextSupplier
	At          time.Time
}

type CallTimerStop struct {
	CallContext CallContextSupplier
	At          time.Time
}

func (IncreaseCounter) metricMessage()             {}
func (AriEventObserved) metricMessage()            {}
func (PersistenceUpdateTimerStart) metricMessage() {}
func (PersistenceUpdateTimerStop) metricMessage()  {}
func (CallTimerStart) metricMessage()              {}
func (CallTimerStop) metricMessage()               {}

// callTimerResolved is posted back to the inbox once a call timer's
// supplier has been evaluated off the service loop.
type callTimerResolved struct {
	callContext string
	at          time.Time
	start       bool
}

func (callTimerResolved) metricMessage() {}

// TellerFunc adapts a function to Teller.
type TellerFunc func(msg Message)

func (f TellerFunc) Tell(msg Message) {
	f(msg)
}

// Discard drops every message.
var Discard Teller = TellerFunc(func(Message) {})


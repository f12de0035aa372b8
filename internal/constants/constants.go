package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultCommandsTopic           = "ari-commands"
	DefaultEventsAndResponsesTopic = "ari-events-and-responses"
)

const (
	WebsocketPingInterval    = 10 * time.Second
	WebsocketReadLimit       = 10 << 20
	ReconnectInitialInterval = 500 * time.Millisecond
	ReconnectMaxInterval     = 30 * time.Second
)

const (
	CallContextKeyPrefix   = "callcontext:"
	ResourceKeyPrefix      = "resource:"
	DefaultCallContextTTL  = 6 * time.Hour
	DefaultMongoCollection = "call_contexts"
)

const (
	DefaultResolutionTimeout = 2 * time.Second
	DefaultInboxSize         = 1024
	DefaultTapConcurrency    = 8
)

const (
	MetricsSweepInterval      = time.Minute
	PersistenceTimerOrphanAge = 5 * time.Minute
	CallTimerOrphanAge        = 24 * time.Hour
)

const (
	HealthCheckTimeout = 5 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	ServiceName = "ari-proxy"
)

// Names of counters raised through the metrics service.
const (
	CounterEventProcessorRestarts = "ariproxy.errors.EventProcessorRestarts"
	CounterCallContextErrors      = "ariproxy.errors.CallContextResolution"
	CounterCallsStarted           = "CallsStarted"
	CounterCallsEnded             = "CallsEnded"
)

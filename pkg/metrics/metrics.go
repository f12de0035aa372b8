package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AriEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ari_events_total",
			Help: "Total number of ARI messages observed by the metrics tap, by message type (count)",
		},
		[]string{"type"},
	)

	NamedCounterTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ariproxy_counter_total",
			Help: "Named counters raised through the metrics service (count)",
		},
		[]string{"name"},
	)

	CallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ari_call_duration_seconds",
			Help:    "Duration between StasisStart and StasisEnd of a call in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	CallsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ari_calls_active",
			Help: "Number of calls with a running call timer (count)",
		},
	)

	PersistenceUpdateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "persistence_update_duration_ms",
			Help:    "Duration of key-value store updates in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"status"},
	)

	PersistenceTimersOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "persistence_update_timers_open",
			Help: "Number of started but not yet stopped persistence update timers (count)",
		},
	)

	CallContextResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callcontext_resolutions_total",
			Help: "Total number of call context resolutions (count)",
		},
		[]string{"policy", "status"},
	)

	CallContextResolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "callcontext_resolution_duration_ms",
			Help:    "Round-trip duration of call context resolutions in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"policy"},
	)

	TranslationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_translation_failures_total",
			Help: "Total number of messages skipped after a translation failure (count)",
		},
		[]string{"code"},
	)

	RecordsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_records_emitted_total",
			Help: "Total number of output records handed to the sink (count)",
		},
		[]string{"topic"},
	)

	ThrottleWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_throttle_wait_duration_ms",
			Help:    "Time a message waited on the pipeline throttle in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	MetricsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metrics_service_dropped_total",
			Help: "Metric messages dropped because the metrics service inbox was full (count)",
		},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"topic", "status"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"topic"},
	)

	WebsocketFramesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ari_websocket_frames_total",
			Help: "Total number of text frames read from the ARI websocket (count)",
		},
	)

	WebsocketReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ari_websocket_reconnects_total",
			Help: "Total number of ARI websocket reconnect attempts (count)",
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)
)

var (
	registerPipelineOnce       sync.Once
	registerPersistenceOnce    sync.Once
	registerTransportOnce      sync.Once
	registerCircuitBreakerOnce sync.Once
)

func RegisterPipelineMetrics() {
	registerPipelineOnce.Do(func() {
		prometheus.MustRegister(AriEventsTotal)
		prometheus.MustRegister(NamedCounterTotal)
		prometheus.MustRegister(CallDuration)
		prometheus.MustRegister(CallsActive)
		prometheus.MustRegister(CallContextResolutionsTotal)
		prometheus.MustRegister(CallContextResolutionDuration)
		prometheus.MustRegister(TranslationFailuresTotal)
		prometheus.MustRegister(RecordsEmittedTotal)
		prometheus.MustRegister(ThrottleWaitDuration)
		prometheus.MustRegister(MetricsDroppedTotal)
	})
}

func RegisterPersistenceMetrics() {
	registerPersistenceOnce.Do(func() {
		prometheus.MustRegister(PersistenceUpdateDuration)
		prometheus.MustRegister(PersistenceTimersOpen)
	})
}

func RegisterTransportMetrics() {
	registerTransportOnce.Do(func() {
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
		prometheus.MustRegister(KafkaWriteDuration)
		prometheus.MustRegister(WebsocketFramesTotal)
		prometheus.MustRegister(WebsocketReconnectsTotal)
	})
}

func RegisterCircuitBreakerMetrics() {
	registerCircuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func IncAriEvent(messageType string) {
	AriEventsTotal.WithLabelValues(messageType).Inc()
}

func IncNamedCounter(name string) {
	NamedCounterTotal.WithLabelValues(name).Inc()
}

func ObserveCallDuration(duration time.Duration) {
	CallDuration.Observe(duration.Seconds())
}

func ObservePersistenceUpdate(duration time.Duration, status string) {
	PersistenceUpdateDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveResolution(policy, status string, duration time.Duration) {
	CallContextResolutionsTotal.WithLabelValues(policy, status).Inc()
	CallContextResolutionDuration.WithLabelValues(policy).Observe(float64(duration.Milliseconds()))
}

func IncTranslationFailure(code string) {
	TranslationFailuresTotal.WithLabelValues(code).Inc()
}

func IncRecordEmitted(topic string) {
	RecordsEmittedTotal.WithLabelValues(topic).Inc()
}

func ObserveThrottleWait(duration time.Duration) {
	ThrottleWaitDuration.Observe(float64(duration.Milliseconds()))
}

func IncKafkaMessageWritten(topic, status string) {
	KafkaMessagesWrittenTotal.WithLabelValues(topic, status).Inc()
}

func ObserveKafkaWriteDuration(topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(topic).Observe(float64(duration.Milliseconds()))
}

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Ari: AriConfig{
			URL:         "ws://asterisk:8088/ari/events",
			Application: "ari-proxy",
		},
		Kafka: KafkaConfig{
			Brokers:                 []string{"kafka:9092"},
			CommandsTopic:           "ari-commands",
			EventsAndResponsesTopic: "ari-events-and-responses",
		},
		Persistence: PersistenceConfig{Type: "memory"},
		CallContext: CallContextConfig{ResolutionTimeout: time.Second, InboxSize: 16},
		Pipeline:    PipelineConfig{Concurrency: 4},
		Metrics:     MetricsConfig{InboxSize: 16, ResolveConcurrency: 4},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantField: "server.port"},
		{name: "missing ari url", mutate: func(c *Config) { c.Ari.URL = "" }, wantField: "ari.url"},
		{name: "http ari url", mutate: func(c *Config) { c.Ari.URL = "http://asterisk:8088" }, wantField: "ari.url"},
		{name: "no brokers", mutate: func(c *Config) { c.Kafka.Brokers = nil }, wantField: "kafka.brokers"},
		{name: "empty broker", mutate: func(c *Config) { c.Kafka.Brokers = []string{""} }, wantField: "kafka.brokers[0]"},
		{
			name:      "same topics",
			mutate:    func(c *Config) { c.Kafka.EventsAndResponsesTopic = c.Kafka.CommandsTopic },
			wantField: "kafka.events_and_responses_topic",
		},
		{
			name:      "no metrics resolvers",
			mutate:    func(c *Config) { c.Metrics.ResolveConcurrency = 0 },
			wantField: "metrics.resolve_concurrency",
		},
		{name: "unknown store", mutate: func(c *Config) { c.Persistence.Type = "etcd" }, wantField: "persistence.type"},
		{
			name:      "redis without host",
			mutate:    func(c *Config) { c.Persistence.Type = "redis"; c.Persistence.Redis.Port = 6379 },
			wantField: "persistence.redis.host",
		},
		{
			name:      "mongodb bad uri",
			mutate:    func(c *Config) { c.Persistence.Type = "mongodb"; c.Persistence.MongoDB.URI = "localhost" },
			wantField: "persistence.mongodb.uri",
		},
		{
			name:      "zero resolution timeout",
			mutate:    func(c *Config) { c.CallContext.ResolutionTimeout = 0 },
			wantField: "callcontext.resolution_timeout",
		},
		{name: "zero concurrency", mutate: func(c *Config) { c.Pipeline.Concurrency = 0 }, wantField: "pipeline.concurrency"},
		{
			name:      "bad routing target",
			mutate:    func(c *Config) { c.Pipeline.Routing = map[string]string{"stasisstart": "dlq"} },
			wantField: "pipeline.routing.stasisstart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			if assert.True(t, errors.As(err, &vErr)) {
				assert.Equal(t, tt.wantField, vErr.Field)
			}
		})
	}
}

func TestValidateStatic_CollectsAllSections(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	cfg.Kafka.Brokers = nil

	err := ValidateStatic(cfg)
	assert.ErrorContains(t, err, "server.port")
	assert.ErrorContains(t, err, "kafka.brokers")
}

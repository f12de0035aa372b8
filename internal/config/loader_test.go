package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
ari:
  url: ws://asterisk:8088/ari/events
  user: proxy
  password: secret
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
persistence:
  type: memory
pipeline:
  concurrency: 2
  throttle:
    rps: 52
    burst: 52
  routing:
    StasisStart: events
    ChannelDtmfReceived: commands
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ari-proxy", cfg.Ari.Application)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "ari-commands", cfg.Kafka.CommandsTopic)
	assert.Equal(t, "ari-events-and-responses", cfg.Kafka.EventsAndResponsesTopic)
	assert.Equal(t, 2*time.Second, cfg.CallContext.ResolutionTimeout)
	assert.Equal(t, 6*time.Hour, cfg.Persistence.TTL)
	assert.Equal(t, 52.0, cfg.Pipeline.Throttle.RPS)
	assert.Equal(t, 8, cfg.Metrics.ResolveConcurrency)
	// viper lower-cases map keys
	assert.Equal(t, "commands", cfg.Pipeline.Routing["channeldtmfreceived"])
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("KAFKA_COMMANDS_TOPIC", "cmds")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "cmds", cfg.Kafka.CommandsTopic)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidFails(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "ari:\n  url: http://wrong\nkafka:\n  brokers: [k:9092]\npersistence:\n  type: memory\n"))
	assert.ErrorContains(t, err, "ari.url")
}

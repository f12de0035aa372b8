package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"ariproxy/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(v, &cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("ari.application", "ari-proxy")
	v.SetDefault("ari.ping_interval", constants.WebsocketPingInterval)
	v.SetDefault("ari.reconnect.initial_interval", constants.ReconnectInitialInterval)
	v.SetDefault("ari.reconnect.max_interval", constants.ReconnectMaxInterval)
	v.SetDefault("ari.reconnect.multiplier", 2.0)

	v.SetDefault("kafka.commands_topic", constants.DefaultCommandsTopic)
	v.SetDefault("kafka.events_and_responses_topic", constants.DefaultEventsAndResponsesTopic)
	v.SetDefault("kafka.batch_timeout", constants.KafkaBatchTimeout)
	v.SetDefault("kafka.write_timeout", constants.KafkaWriteTimeout)

	v.SetDefault("persistence.type", "redis")
	v.SetDefault("persistence.ttl", constants.DefaultCallContextTTL)
	v.SetDefault("persistence.metered", true)
	v.SetDefault("persistence.mongodb.collection", constants.DefaultMongoCollection)

	v.SetDefault("callcontext.resolution_timeout", constants.DefaultResolutionTimeout)
	v.SetDefault("callcontext.inbox_size", constants.DefaultInboxSize)

	v.SetDefault("pipeline.concurrency", constants.DefaultTapConcurrency)
	v.SetDefault("metrics.inbox_size", constants.DefaultInboxSize)
	v.SetDefault("metrics.resolve_concurrency", constants.DefaultTapConcurrency)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("ari.url", "ARI_URL")
	v.BindEnv("ari.user", "ARI_USER")
	v.BindEnv("ari.password", "ARI_PASSWORD")
	v.BindEnv("ari.application", "ARI_APPLICATION")

	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.commands_topic", "KAFKA_COMMANDS_TOPIC")
	v.BindEnv("kafka.events_and_responses_topic", "KAFKA_EVENTS_AND_RESPONSES_TOPIC")

	v.BindEnv("persistence.type", "PERSISTENCE_TYPE")
	v.BindEnv("persistence.redis.host", "PERSISTENCE_REDIS_HOST")
	v.BindEnv("persistence.redis.port", "PERSISTENCE_REDIS_PORT")
	v.BindEnv("persistence.redis.password", "PERSISTENCE_REDIS_PASSWORD")
	v.BindEnv("persistence.mongodb.uri", "PERSISTENCE_MONGODB_URI")
	v.BindEnv("persistence.postgres.host", "PERSISTENCE_POSTGRES_HOST")
	v.BindEnv("persistence.postgres.password", "PERSISTENCE_POSTGRES_PASSWORD")

	v.BindEnv("callcontext.resolution_timeout", "CALLCONTEXT_RESOLUTION_TIMEOUT")
	v.BindEnv("pipeline.concurrency", "PIPELINE_CONCURRENCY")
	v.BindEnv("pipeline.throttle.rps", "PIPELINE_THROTTLE_RPS")
	v.BindEnv("metrics.resolve_concurrency", "METRICS_RESOLVE_CONCURRENCY")

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("logging.level", "LOGGING_LEVEL")
	v.BindEnv("logging.format", "LOGGING_FORMAT")

	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
}

// applyEnvOverrides handles values viper cannot split on its own.
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if brokersEnv := v.GetString("KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Kafka.Brokers = brokers
		}
	}
}

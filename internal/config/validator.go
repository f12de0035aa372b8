package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errs []error

	for _, validate := range []func(*Config) error{
		validateServer,
		validateAri,
		validateKafka,
		validatePersistence,
		validateCallContext,
		validatePipeline,
	} {
		if err := validate(cfg); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateServer(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Server.Port),
		}
	}
	return nil
}

func validateAri(cfg *Config) error {
	if cfg.Ari.URL == "" {
		return &ValidationError{Field: "ari.url", Message: "ARI websocket URL is required"}
	}

	u, err := url.Parse(cfg.Ari.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return &ValidationError{Field: "ari.url", Message: "ARI URL must start with ws:// or wss://"}
	}

	if cfg.Ari.Application == "" {
		return &ValidationError{Field: "ari.application", Message: "ARI application name is required"}
	}

	if cfg.Ari.Reconnect.MaxInterval > 0 && cfg.Ari.Reconnect.MaxInterval < cfg.Ari.Reconnect.InitialInterval {
		return &ValidationError{
			Field:   "ari.reconnect.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	return nil
}

func validateKafka(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return &ValidationError{Field: "kafka.brokers", Message: "at least one Kafka broker is required"}
	}

	for i, broker := range cfg.Kafka.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Kafka.CommandsTopic == "" {
		return &ValidationError{Field: "kafka.commands_topic", Message: "commands topic is required"}
	}

	if cfg.Kafka.EventsAndResponsesTopic == "" {
		return &ValidationError{Field: "kafka.events_and_responses_topic", Message: "events-and-responses topic is required"}
	}

	if cfg.Kafka.CommandsTopic == cfg.Kafka.EventsAndResponsesTopic {
		return &ValidationError{
			Field:   "kafka.events_and_responses_topic",
			Message: "events-and-responses topic must differ from the commands topic",
		}
	}

	return nil
}

func validatePersistence(cfg *Config) error {
	p := cfg.Persistence

	if p.TTL < 0 {
		return &ValidationError{Field: "persistence.ttl", Message: "TTL must be non-negative"}
	}

	switch strings.ToLower(p.Type) {
	case "memory":
		return nil
	case "redis":
		return validateRedis(p.Redis)
	case "mongodb":
		return validateMongoDB(p.MongoDB)
	case "postgres":
		return validatePostgres(p.Postgres)
	default:
		return &ValidationError{
			Field:   "persistence.type",
			Message: fmt.Sprintf("unknown persistence type: %q (supported: memory, redis, mongodb, postgres)", p.Type),
		}
	}
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{Field: "persistence.redis.host", Message: "Redis host is required"}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "persistence.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "persistence.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	if cfg.Database == "" {
		return &ValidationError{Field: "persistence.mongodb.database", Message: "MongoDB database name is required"}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{Field: "persistence.postgres.host", Message: "PostgreSQL host is required"}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "persistence.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{Field: "persistence.postgres.user", Message: "PostgreSQL user is required"}
	}

	if cfg.DBName == "" {
		return &ValidationError{Field: "persistence.postgres.dbname", Message: "PostgreSQL database name is required"}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "persistence.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s", cfg.SSLMode),
		}
	}

	return nil
}

func validateCallContext(cfg *Config) error {
	if cfg.CallContext.ResolutionTimeout <= 0 {
		return &ValidationError{Field: "callcontext.resolution_timeout", Message: "resolution timeout must be positive"}
	}
	if cfg.CallContext.InboxSize < 1 {
		return &ValidationError{Field: "callcontext.inbox_size", Message: "inbox size must be at least 1"}
	}
	return nil
}

func validatePipeline(cfg *Config) error {
	if cfg.Pipeline.Concurrency < 1 {
		return &ValidationError{Field: "pipeline.concurrency", Message: "concurrency must be at least 1"}
	}

	if cfg.Pipeline.Throttle.RPS < 0 {
		return &ValidationError{Field: "pipeline.throttle.rps", Message: "rps must be non-negative"}
	}

	for messageType, target := range cfg.Pipeline.Routing {
		switch strings.ToLower(target) {
		case "commands", "events":
		default:
			return &ValidationError{
				Field:   "pipeline.routing." + messageType,
				Message: fmt.Sprintf("unknown routing target %q (supported: commands, events)", target),
			}
		}
	}

	if cfg.Metrics.InboxSize < 1 {
		return &ValidationError{Field: "metrics.inbox_size", Message: "inbox size must be at least 1"}
	}

	if cfg.Metrics.ResolveConcurrency < 1 {
		return &ValidationError{Field: "metrics.resolve_concurrency", Message: "resolve concurrency must be at least 1"}
	}

	return nil
}

package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Ari            AriConfig            `mapstructure:"ari"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Persistence    PersistenceConfig    `mapstructure:"persistence"`
	CallContext    CallContextConfig    `mapstructure:"callcontext"`
	Pipeline       PipelineConfig       `mapstructure:"pipeline"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type AriConfig struct {
	URL          string        `mapstructure:"url"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Application  string        `mapstructure:"application"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	Reconnect    RetryConfig   `mapstructure:"reconnect"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type KafkaConfig struct {
	Brokers                 []string      `mapstructure:"brokers"`
	CommandsTopic           string        `mapstructure:"commands_topic"`
	EventsAndResponsesTopic string        `mapstructure:"events_and_responses_topic"`
	BatchTimeout            time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
}

type PersistenceConfig struct {
	Type     string         `mapstructure:"type"` // "memory", "redis", "mongodb", "postgres"
	TTL      time.Duration  `mapstructure:"ttl"`
	Metered  bool           `mapstructure:"metered"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type PostgresConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	DBName        string `mapstructure:"dbname"`
	SSLMode       string `mapstructure:"sslmode"`
	RunMigrations bool   `mapstructure:"run_migrations"`
}

type CallContextConfig struct {
	ResolutionTimeout time.Duration `mapstructure:"resolution_timeout"`
	InboxSize         int           `mapstructure:"inbox_size"`
}

type PipelineConfig struct {
	Concurrency int               `mapstructure:"concurrency"`
	StopOnError bool              `mapstructure:"stop_on_error"`
	Throttle    ThrottleConfig    `mapstructure:"throttle"`
	Routing     map[string]string `mapstructure:"routing"` // message type -> "commands" | "events"
}

type ThrottleConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type MetricsConfig struct {
	InboxSize          int `mapstructure:"inbox_size"`
	ResolveConcurrency int `mapstructure:"resolve_concurrency"` // call timer suppliers evaluated at once
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"ariproxy/internal/config"
	"ariproxy/internal/logger"
	"ariproxy/internal/sink"
)

type Base struct {
	Config *config.Config
	Logger logger.Logger
	Sink   sink.Sink
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

func (b *Base) InitSink() {
	b.Sink = sink.NewKafkaSink(b.Config.Kafka, b.Logger)
	b.Logger.Infow("Kafka sink created",
		"brokers", b.Config.Kafka.Brokers,
		"commands_topic", b.Config.Kafka.CommandsTopic,
		"events_and_responses_topic", b.Config.Kafka.EventsAndResponsesTopic,
	)
}

func (b *Base) ShutdownSink() []error {
	var errs []error

	if b.Sink != nil {
		if err := b.Sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sink close error: %w", err))
		}
	}

	return errs
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	errs = append(errs, b.ShutdownSink()...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	b.Logger.Info("Application exited successfully")
	return nil
}

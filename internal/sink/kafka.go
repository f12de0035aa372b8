package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ariproxy/internal/config"
	"ariproxy/internal/constants"
	"ariproxy/internal/logger"
	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/health"
	"ariproxy/pkg/metrics"
	"ariproxy/pkg/models"
	"ariproxy/pkg/tracing"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// KafkaSink writes records keyed by call context. The hash balancer keeps
// every record of a call on one partition.
type KafkaSink struct {
	writer  *kafka.Writer
	brokers []string
	logger  logger.Logger
}

func NewKafkaSink(cfg config.KafkaConfig, log logger.Logger) *KafkaSink {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = constants.KafkaBatchTimeout
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = constants.KafkaWriteTimeout
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: false,
		Async:                  false,
	}
	return &KafkaSink{writer: w, brokers: cfg.Brokers, logger: log}
}

func (s *KafkaSink) Write(ctx context.Context, records ...models.OutputRecord) error {
	if len(records) == 0 {
		return nil
	}

	headers := tracing.InjectTraceContext(ctx, nil)
	now := time.Now()

	messages := make([]kafka.Message, 0, len(records))
	for _, record := range records {
		if err := models.ValidateRecord(record); err != nil {
			return apperrors.ErrSink.WithCause(apperrors.Wrap(err, apperrors.ErrValidation))
		}
		messages = append(messages, kafka.Message{
			Topic:   record.Topic,
			Key:     []byte(record.Key),
			Value:   []byte(record.Value),
			Headers: headers,
			Time:    now,
		})
	}

	start := time.Now()
	err := s.writer.WriteMessages(ctx, messages...)
	elapsed := time.Since(start)

	status := statusOK
	if err != nil {
		status = statusError
	}
	for _, record := range records {
		metrics.IncKafkaMessageWritten(record.Topic, status)
		metrics.ObserveKafkaWriteDuration(record.Topic, elapsed)
	}

	if err != nil {
		return apperrors.Wrap(fmt.Errorf("failed to write kafka messages: %w", err), apperrors.ErrSink)
	}
	return nil
}

// CheckHealth dials the first reachable broker.
func (s *KafkaSink) CheckHealth(ctx context.Context) health.Report {
	var lastErr error
	for _, broker := range s.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return health.Healthy("sink.kafka")
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no kafka brokers configured")
	}
	return health.Unhealthy("sink.kafka", lastErr)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

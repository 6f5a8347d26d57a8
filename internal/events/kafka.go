package events

import (
	"context"
	"fmt"
	"time"

	"fitstudio/pkg/kafka"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/middleware"
)

const (
	source         = "fitstudio"
	publishTimeout = 5 * time.Second
)

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer producer
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *kafka.Config, topic string, log *logger.Logger) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(cfg, topic, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	p.Use(kafka.LoggingMiddleware(log))
	return &KafkaPublisher{producer: p, log: log}, nil
}

// Publish detaches from the caller's cancellation; the change it announces
// has already committed.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	builder := kafka.NewMessage().
		WithKey(event.ClassID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(source).
		WithTimestamp(event.OccurredAt)
	if requestID := middleware.RequestID(ctx); requestID != "" {
		builder = builder.WithCorrelationID(requestID)
	}

	if err := p.producer.Publish(ctx, builder.Build()); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

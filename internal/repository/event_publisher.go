package repository

import (
	"context"
	"fmt"

	"TrueSignal/internal/domain/models"
	drepo "TrueSignal/internal/domain/repository"
)

// producer is the subset of pkg/kafka.Producer the publisher needs.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher writes analysis audit events keyed by ticker so a
// ticker's events stay ordered within a partition.
type KafkaEventPublisher struct {
	producer producer
	topic    string
}

func NewKafkaEventPublisher(p producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, topic: topic}
}

var _ drepo.EventPublisher = (*KafkaEventPublisher)(nil)

func (p *KafkaEventPublisher) PublishAnalysis(ctx context.Context, ev *models.AnalysisEvent) error {
	if ev == nil {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.Ticker), ev); err != nil {
		return fmt.Errorf("publish analysis event: %w", err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// NoopEventPublisher drops events. Used when Kafka is disabled.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishAnalysis(context.Context, *models.AnalysisEvent) error { return nil }

func (NoopEventPublisher) Close() error { return nil }

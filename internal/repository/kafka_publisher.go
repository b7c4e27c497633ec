package repository

import (
	"context"

	"Barashor/internal/domain/models"
	"Barashor/internal/domain/repository"
	"Barashor/pkg/kafka"
)

// KafkaPublisher emits each persisted decision as a Kafka event keyed by
// symbol, so downstream consumers see per-symbol ordering.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

var _ repository.DecisionPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, d *models.SignalDecision) error {
	return p.producer.Publish(ctx, p.topic, []byte(d.Symbol), d)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher satisfies the publisher contract when event streaming is
// disabled.
type NopPublisher struct{}

var _ repository.DecisionPublisher = NopPublisher{}

func (NopPublisher) Publish(ctx context.Context, d *models.SignalDecision) error { return nil }
func (NopPublisher) Close() error                                                { return nil }

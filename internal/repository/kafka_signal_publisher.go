package repository

import (
	"context"
	"fmt"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
	pkgkafka "RWAPulse/pkg/kafka"
)

// KafkaSignalPublisher writes signal events as JSON keyed by asset id, so all
// events of one asset stay ordered on one partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, ev *models.SignalEvent) error {
	if ev == nil {
		return fmt.Errorf("nil signal event")
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.Signal.AssetID), ev)
}

func (p *KafkaSignalPublisher) PublishBatch(ctx context.Context, evs []*models.SignalEvent) error {
	msgs := make([]pkgkafka.Message, 0, len(evs))
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(ev.Signal.AssetID), Value: ev})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.SignalPublisher = (*KafkaSignalPublisher)(nil)

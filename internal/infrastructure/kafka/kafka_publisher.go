package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Publish writes msgs to topic. Messages sharing a key (the order number)
// land on the same partition, which keeps one order's events in order.
func (k *DefaultKafkaPublisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Topic: topic,
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
		})
	}

	if err := k.writer.WriteMessages(ctx, km...); err != nil {
		return fmt.Errorf("failed to write %d messages to %s: %w", len(km), topic, err)
	}
	return nil
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}

// LogPublisher stands in for Kafka when it is disabled; relayed events are
// only logged.
type LogPublisher struct {
	Log func(msg string, args ...any)
}

func (p LogPublisher) Publish(_ context.Context, topic string, msgs ...domain.Message) error {
	for _, m := range msgs {
		p.Log("order event", "topic", topic, "key", string(m.Key), "payload", string(m.Value))
	}
	return nil
}

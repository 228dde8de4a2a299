package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/learningeconomy/consentflow/internal/platform/kafka/producer"
)

// KafkaStore publishes audit events to a Kafka topic instead of persisting
// them locally. Events are keyed by profile ID so all events for a profile
// land on the same partition in order.
type KafkaStore struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaStore constructs a Kafka-backed audit sink.
func NewKafkaStore(prod *producer.Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: prod, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.ProfileID),
		Value: payload,
		Headers: map[string]string{
			"action": event.Action,
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// ListByProfile is not supported by the Kafka sink; the audit trail is
// consumed downstream. Callers needing reads should use a persistent store.
func (s *KafkaStore) ListByProfile(_ context.Context, _ string) ([]Event, error) {
	return nil, ErrNotFound
}

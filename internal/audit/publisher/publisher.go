// Package publisher mirrors committed audit entries onto a Kafka topic so
// downstream compliance tooling can consume the trail without polling the
// store. The store remains the source of truth; the mirror is best-effort.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"datawipe/internal/audit"
	"datawipe/internal/platform/kafka/producer"
)

// KafkaPublisher serializes entries as JSON keyed by subject user id.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
}

func NewKafka(p *producer.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

type wirePayload struct {
	ID          string        `json:"id"`
	Timestamp   string        `json:"timestamp"`
	UserID      string        `json:"user_id"`
	Actor       string        `json:"actor"`
	RequestType string        `json:"request_type"`
	Status      string        `json:"status"`
	Results     audit.Results `json:"results"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry audit.Entry) error {
	payload, err := json.Marshal(wirePayload{
		ID:          entry.ID.String(),
		Timestamp:   entry.Timestamp.Format(time.RFC3339Nano),
		UserID:      entry.UserID.String(),
		Actor:       entry.Actor,
		RequestType: entry.RequestType,
		Status:      entry.Status,
		Results:     entry.Results,
	})
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	return p.producer.Produce(ctx, &producer.Message{
		Topic: p.topic,
		Key:   []byte(entry.UserID.String()),
		Value: payload,
	})
}

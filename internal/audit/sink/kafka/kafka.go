// Package kafka publishes audit events to a Kafka topic for downstream
// consumers (SIEM export, long-term archival). The sink is best effort; the
// recorder logs and drops on publish failure.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"mentorlab/internal/audit"
)

// Sink implements audit.Sink over a franz-go client.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New dials the brokers and returns a sink producing to topic.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// record is the published wire form.
type record struct {
	ID            string    `json:"id"`
	ActorID       string    `json:"actor_id"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Details       string    `json:"details,omitempty"`
	SourceAddress string    `json:"source_address"`
	ClientAgent   string    `json:"client_agent"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publish produces the event as a JSON record keyed by actor ID, so one
// actor's events land on one partition in order.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(record{
		ID:            event.ID.String(),
		ActorID:       event.ActorID.String(),
		Action:        event.Action.String(),
		EntityType:    event.EntityType.String(),
		EntityID:      event.EntityID,
		Details:       event.Details,
		SourceAddress: event.SourceAddress,
		ClientAgent:   event.ClientAgent,
		OccurredAt:    event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	msg := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ActorID.String()),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, msg).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}

// Package kafkafanout provides a Broadcaster implementation over Apache
// Kafka, so that already-persisted payment events can be fanned out to
// downstream consumers (projections, notifications, fraud tooling).
//
// Messages are keyed by payment id: all events of one aggregate land on the
// same partition, preserving per-aggregate order for consumers.
package kafkafanout

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"

	"github.com/finlock/payment-eventstore-go/eventstore"
)

// Broadcaster publishes payment events to a Kafka topic.
type Broadcaster struct {
	writer *kafka.Writer
}

// envelope is the wire shape of a broadcast event.
type envelope struct {
	EventID        string                        `json:"event_id"`
	PaymentID      string                        `json:"payment_id"`
	EventType      string                        `json:"event_type"`
	Payload        jsoniter.RawMessage           `json:"payload"`
	OccurredAt     time.Time                     `json:"occurred_at"`
	SequenceNumber eventstore.SequenceNumberUint `json:"sequence_number"`
	CorrelationID  string                        `json:"correlation_id,omitempty"`
	ActorID        string                        `json:"actor_id,omitempty"`
}

// NewBroadcaster creates a Kafka broadcaster writing to the given topic.
func NewBroadcaster(brokers []string, topic string) *Broadcaster {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Broadcaster{writer: writer}
}

// Broadcast delivers one already-persisted event to the topic.
func (b *Broadcaster) Broadcast(ctx context.Context, event eventstore.Event) error {
	value, err := jsoniter.ConfigFastest.Marshal(envelope{
		EventID:        event.EventID,
		PaymentID:      event.PaymentID,
		EventType:      event.EventType.String(),
		Payload:        jsoniter.RawMessage(event.PayloadJSON),
		OccurredAt:     event.OccurredAt,
		SequenceNumber: event.SequenceNumber,
		CorrelationID:  event.CorrelationID,
		ActorID:        event.ActorID,
	})
	if err != nil {
		return err
	}

	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PaymentID),
		Value: value,
		Time:  event.OccurredAt,
	})
}

// Close flushes and closes the underlying writer.
func (b *Broadcaster) Close() error {
	return b.writer.Close()
}

package producer

import (
	"context"

	"leaveflow/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// publish writes one staged event to its topic, keyed by the leave
// request id so a request's events stay ordered within a partition. The
// originating correlation id travels along as a header.
func (r *Relay) publish(ctx context.Context, event kafka.OutboxEvent) error {
	headers := []kafkago.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
	}
	if event.RequestID != "" {
		headers = append(headers, kafkago.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}

	return r.writer.WriteMessages(ctx, kafkago.Message{
		Topic:   event.Topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	})
}

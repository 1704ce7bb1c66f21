package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events as JSON to a single topic, keyed by event type.
type KafkaPublisher struct {
	w *kgo.Writer
}

// NewKafkaPublisher creates an async writer; delivery errors are logged from
// the completion callback.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.LeastBytes{},
		RequiredAcks: kgo.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kgo.Message, err error) {
			if err != nil {
				log.Printf("kafka: failed to deliver %d event(s): %v", len(messages), err)
			}
		},
	}
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("kafka: encode %s event: %v", ev.Type, err)
		return
	}
	msg := kgo.Message{Key: []byte(ev.Type), Value: b, Time: ev.OccurredAt}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		log.Printf("kafka: write %s event: %v", ev.Type, err)
	}
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error { return p.w.Close() }

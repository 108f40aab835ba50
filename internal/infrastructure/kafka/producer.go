package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/ec-chatbot/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Producer publishes fulfillment event envelopes keyed by aggregate id
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

// NewEvent wraps payload in an envelope with a fresh id and timestamp
func NewEvent(aggregateType, aggregateID, eventType string, payload any) (domain.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now().UTC(),
		Version:       1,
	}, nil
}

func (p *Producer) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: data,
		Time:  event.Timestamp,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

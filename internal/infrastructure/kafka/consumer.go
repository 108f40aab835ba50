package kafka

import (
	"context"

	"github.com/example/ec-chatbot/internal/logger"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

type Consumer struct {
	reader *kafka.Reader
	log    logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader: reader,
		log:    logger.Component(log, "kafka-consumer").With(map[string]any{"topic": topic, "group": groupID}),
	}
}

// Consume blocks until ctx is cancelled. Handler errors are logged and the
// offset still advances.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.WithError(err).Error("error reading message", nil)
				continue
			}

			if err := handler(ctx, msg.Key, msg.Value); err != nil {
				c.log.WithError(err).Error("error handling message", map[string]any{
					"partition": msg.Partition,
					"offset":    msg.Offset,
					"key":       string(msg.Key),
				})
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

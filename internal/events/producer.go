package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/filestore/backend/internal/config"
	"github.com/filestore/backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher delivers events to subscribers outside the service.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &Producer{writer: writer, topic: cfg.Topic}
}

// Publish writes event keyed by its resource so all events for one file land
// on the same partition in order.
func (p *Producer) Publish(ctx context.Context, event *Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Error("event_publish_failed", err, map[string]interface{}{
			"event_type":  event.EventType,
			"resource_id": event.ResourceID,
			"topic":       p.topic,
		})
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

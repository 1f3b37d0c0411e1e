package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pilltrack/internal/adapters/delivery"
	"pilltrack/internal/domain/notifications"

	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter es la parte de *kafka.Writer que se usa (fake en tests).
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher escribe cada notificación en un topic, con key = user_id
// para que las de un mismo usuario caigan en la misma partición.
type Publisher struct {
	w messageWriter
}

func New(brokers []string, topic string) (*Publisher, error) {
	clean := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			clean = append(clean, b)
		}
	}
	if len(clean) == 0 {
		return nil, errors.New("kafka: at least one broker required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka: topic required")
	}

	return &Publisher{w: newWriter(clean, topic)}, nil
}

// BatchTimeout es lo máximo que WriteMessages espera a completar un batch.
// Se publica de a un mensaje, así que el default de 1s bloquearía cada notificación.
const BatchTimeout = 10 * time.Millisecond

func newWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: BatchTimeout,
		RequiredAcks: kafkago.RequireOne,
	}
}

func newWithWriter(w messageWriter) *Publisher {
	return &Publisher{w: w}
}

func (p *Publisher) Publish(ctx context.Context, n notifications.Notification) error {
	payload, err := delivery.Marshal(n)
	if err != nil {
		return fmt.Errorf("kafka: marshal: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(n.UserID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

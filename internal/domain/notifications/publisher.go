package notifications

import "context"

// Publisher entrega una notificación ya persistida por un canal externo
// (webhook, kafka, sqs). Implementaciones en internal/adapters/delivery.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// NopPublisher no entrega nada: la notificación queda solo in-app.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Notification) error { return nil }

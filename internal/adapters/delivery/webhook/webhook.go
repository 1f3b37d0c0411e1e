package webhook

import (
	"context"
	"errors"
	"strings"

	"pilltrack/internal/adapters/delivery"
	"pilltrack/internal/domain/notifications"
	"pilltrack/internal/platform/httpclient"
)

// Publisher hace POST del evento a una URL fija (push service, n8n, etc).
type Publisher struct {
	client *httpclient.Client
	url    string
	token  string
}

type Option func(*Publisher)

// WithBearerToken agrega Authorization: Bearer <token> a cada request.
func WithBearerToken(token string) Option {
	return func(p *Publisher) { p.token = strings.TrimSpace(token) }
}

func New(client *httpclient.Client, url string, opts ...Option) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("webhook: nil http client")
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("webhook: url required")
	}
	p := &Publisher{client: client, url: strings.TrimSpace(url)}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Publisher) Publish(ctx context.Context, n notifications.Notification) error {
	headers := map[string]string{
		"X-Notification-ID": n.ID,
	}
	if p.token != "" {
		headers["Authorization"] = "Bearer " + p.token
	}
	return p.client.PostJSON(ctx, p.url, headers, delivery.FromNotification(n))
}

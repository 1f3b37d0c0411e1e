// Package delivery contiene los Publisher que entregan notificaciones fuera del sistema.
package delivery

import (
	"encoding/json"
	"time"

	"pilltrack/internal/domain/notifications"
)

// Event es el payload que sale por webhook/kafka/sqs.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromNotification(n notifications.Notification) Event {
	return Event{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
		CreatedAt: n.CreatedAt,
	}
}

func Marshal(n notifications.Notification) ([]byte, error) {
	return json.Marshal(FromNotification(n))
}

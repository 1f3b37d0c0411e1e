package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pilltrack/internal/domain/notifications"
)

type notificationRepo struct {
	mu   sync.RWMutex
	byID map[string]notifications.Notification
}

func NewNotificationsRepo() notifications.Repository {
	return &notificationRepo{
		byID: make(map[string]notifications.Notification),
	}
}

func (r *notificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		return errors.New("notification id required")
	}
	if _, exists := r.byID[n.ID]; exists {
		return ErrConflict
	}
	r.byID[n.ID] = n
	return nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return notifications.Notification{}, ErrNotFound
	}
	return n, nil
}

// ListByUser devuelve más recientes primero.
func (r *notificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.byID {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if n.Read {
		return nil
	}
	n.Read = true
	n.ReadAt = &at
	r.byID[id] = n
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, n := range r.byID {
		if n.UserID != userID || n.Read {
			continue
		}
		readAt := at
		n.Read = true
		n.ReadAt = &readAt
		r.byID[id] = n
		count++
	}
	return count, nil
}

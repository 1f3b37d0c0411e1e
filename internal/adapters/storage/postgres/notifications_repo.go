package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pilltrack/internal/domain/notifications"
)

type NotificationsRepo struct {
	db DBTX
}

func NewNotificationsRepo(db DBTX) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `
	id, user_id,
	type, title, message, action_url,
	read, read_at, created_at`

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.ActionURL,
		n.Read,
		toNullDate(n.ReadAt),
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return notifications.Notification{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1
	`, id)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notifications.Notification{}, ErrNotFound
		}
		return notifications.Notification{}, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		  AND ($2 = FALSE OR read = FALSE)
		ORDER BY created_at DESC, id DESC
	`, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND read = FALSE
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE,
		    read_at = COALESCE(read_at, $2)
		WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = $2
		WHERE user_id = $1 AND read = FALSE
	`, userID, at)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanNotification(s scanner) (notifications.Notification, error) {
	var n notifications.Notification
	var readAt sql.NullTime
	if err := s.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.ActionURL,
		&n.Read,
		&readAt,
		&n.CreatedAt,
	); err != nil {
		return notifications.Notification{}, err
	}
	n.ReadAt = fromNullTime(readAt)
	return n, nil
}

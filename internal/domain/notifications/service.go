package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pilltrack/internal/domain/reminders"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// Service es el gateway de notificaciones que usan los sweeps.
// Persiste la notificación in-app y luego la publica; cualquier error se devuelve
// tal cual para que el caller decida (los sweeps lo loguean y siguen).
type Service struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
}

func NewService(repo Repository, publisher Publisher) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// NotifyReminder avisa a qué hora tomar la dosis (la hora de la toma, no la del disparo).
func (s *Service) NotifyReminder(ctx context.Context, userID, medicationName, dosage string, doseTime reminders.TimeOfDay) error {
	msg := fmt.Sprintf("Don't forget to take %s at %s", medicationName, doseTime)
	if strings.TrimSpace(dosage) != "" {
		msg = fmt.Sprintf("Don't forget to take %s (%s) at %s", medicationName, dosage, doseTime)
	}
	_, err := s.send(ctx, userID, TypeMedicationReminder, "Time for your medication", msg)
	return err
}

func (s *Service) NotifyLowStock(ctx context.Context, userID, medicationName string, inventory int) error {
	msg := fmt.Sprintf("%s is running low. Only %d units left.", medicationName, inventory)
	_, err := s.send(ctx, userID, TypeLowStock, "Low Stock Alert", msg)
	return err
}

func (s *Service) send(ctx context.Context, userID string, typ Type, title, message string) (Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Notification{}, ErrInvalidInput
	}

	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		ActionURL: actionURLMedications,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, fmt.Errorf("store notification: %w", err)
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		return n, fmt.Errorf("publish notification: %w", err)
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	n, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrForbidden
	}
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, n.ID, s.now()); err != nil {
		return Notification{}, err
	}
	return s.repo.GetByID(ctx, n.ID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

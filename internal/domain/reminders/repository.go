package reminders

import "context"

type Repository interface {
	Create(ctx context.Context, r Reminder) error
	GetByID(ctx context.Context, id string) (Reminder, error)
	ListActiveByType(ctx context.Context, t Type) ([]Reminder, error)
	ListActiveByOwner(ctx context.Context, ownerUserID string) ([]Reminder, error)
	ListByMedication(ctx context.Context, medicationID string) ([]Reminder, error)
}

package doselogs

import (
	"context"
	"time"
)

type Repository interface {
	Exists(ctx context.Context, medicationID string, scheduledTime time.Time) (bool, error)

	// CreateIfAbsent inserta solo si no existe otra fila para (MedicationID, ScheduledTime).
	// created=false significa que ya existía (no es error).
	CreateIfAbsent(ctx context.Context, d DoseLog) (created bool, err error)

	GetByID(ctx context.Context, id string) (DoseLog, error)

	// ListPendingBefore: filas PENDING de medicaciones del owner con scheduled_time <= cutoff.
	ListPendingBefore(ctx context.Context, ownerUserID string, cutoff time.Time) ([]DoseLog, error)

	ListByOwnerBetween(ctx context.Context, ownerUserID string, from, to time.Time) ([]DoseLog, error)
	CountByMedicationBetween(ctx context.Context, medicationID string, from, to time.Time) (map[Status]int, error)

	// TransitionFromPending aplica t solo si la fila sigue PENDING.
	// applied=false si ya estaba en un estado terminal.
	TransitionFromPending(ctx context.Context, t Transition) (applied bool, err error)
}

package memory

import (
	"context"

	"pilltrack/internal/domain/medications"
	"pilltrack/internal/ports/store"
)

var (
	ErrNotFound = store.ErrNotFound
	ErrConflict = store.ErrConflict
)

// medicationLookup resuelve el owner de una medicación para repos que no guardan owner_user_id.
type medicationLookup interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
}

func ownerOf(ctx context.Context, meds medicationLookup, medicationID string) string {
	m, err := meds.GetByID(ctx, medicationID)
	if err != nil {
		return ""
	}
	return m.OwnerUserID
}

package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pilltrack/internal/domain/reminders"
)

type reminderRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.Reminder

	meds medicationLookup
}

// NewRemindersRepo necesita el repo de medicaciones para filtrar por owner.
func NewRemindersRepo(meds medicationLookup) reminders.Repository {
	return &reminderRepo{
		byID: make(map[string]reminders.Reminder),
		meds: meds,
	}
}

func (r *reminderRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rem.ID == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rem.ID]; exists {
		return ErrConflict
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.byID[id]
	if !ok {
		return reminders.Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (r *reminderRepo) ListActiveByType(ctx context.Context, t reminders.Type) ([]reminders.Reminder, error) {
	return r.filter(func(rem reminders.Reminder) bool {
		return rem.Active && rem.Type == t
	}), nil
}

func (r *reminderRepo) ListActiveByOwner(ctx context.Context, ownerUserID string) ([]reminders.Reminder, error) {
	active := r.filter(func(rem reminders.Reminder) bool { return rem.Active })

	// lookup fuera del lock propio: el repo de medicaciones tiene su propio mutex
	out := make([]reminders.Reminder, 0, len(active))
	for _, rem := range active {
		if ownerOf(ctx, r.meds, rem.MedicationID) == ownerUserID {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (r *reminderRepo) ListByMedication(ctx context.Context, medicationID string) ([]reminders.Reminder, error) {
	return r.filter(func(rem reminders.Reminder) bool {
		return rem.MedicationID == medicationID
	}), nil
}

func (r *reminderRepo) filter(keep func(reminders.Reminder) bool) []reminders.Reminder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, rem := range r.byID {
		if keep(rem) {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

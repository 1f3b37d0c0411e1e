package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pilltrack/internal/domain/doselogs"
)

// doseKey es la clave única (medication_id, scheduled_time).
type doseKey struct {
	medicationID string
	scheduled    int64
}

func keyOf(medicationID string, at time.Time) doseKey {
	return doseKey{medicationID: medicationID, scheduled: at.UnixNano()}
}

type doseLogRepo struct {
	mu    sync.RWMutex
	byID  map[string]doselogs.DoseLog
	byKey map[doseKey]string

	meds medicationLookup
}

func NewDoseLogsRepo(meds medicationLookup) doselogs.Repository {
	return &doseLogRepo{
		byID:  make(map[string]doselogs.DoseLog),
		byKey: make(map[doseKey]string),
		meds:  meds,
	}
}

func (r *doseLogRepo) Exists(ctx context.Context, medicationID string, scheduledTime time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byKey[keyOf(medicationID, scheduledTime)]
	return ok, nil
}

// CreateIfAbsent chequea e inserta bajo el mismo lock (equivalente al índice único).
func (r *doseLogRepo) CreateIfAbsent(ctx context.Context, d doselogs.DoseLog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return false, errors.New("dose log id required")
	}
	k := keyOf(d.MedicationID, d.ScheduledTime)
	if _, exists := r.byKey[k]; exists {
		return false, nil
	}
	if _, exists := r.byID[d.ID]; exists {
		return false, ErrConflict
	}
	r.byID[d.ID] = d
	r.byKey[k] = d.ID
	return true, nil
}

func (r *doseLogRepo) GetByID(ctx context.Context, id string) (doselogs.DoseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return doselogs.DoseLog{}, ErrNotFound
	}
	return d, nil
}

func (r *doseLogRepo) ListPendingBefore(ctx context.Context, ownerUserID string, cutoff time.Time) ([]doselogs.DoseLog, error) {
	candidates := r.snapshot(func(d doselogs.DoseLog) bool {
		return d.Status == doselogs.StatusPending && !d.ScheduledTime.After(cutoff)
	})
	return r.ownedBy(ctx, ownerUserID, candidates), nil
}

func (r *doseLogRepo) ListByOwnerBetween(ctx context.Context, ownerUserID string, from, to time.Time) ([]doselogs.DoseLog, error) {
	candidates := r.snapshot(func(d doselogs.DoseLog) bool {
		return !d.ScheduledTime.Before(from) && !d.ScheduledTime.After(to)
	})
	return r.ownedBy(ctx, ownerUserID, candidates), nil
}

func (r *doseLogRepo) CountByMedicationBetween(ctx context.Context, medicationID string, from, to time.Time) (map[doselogs.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[doselogs.Status]int)
	for _, d := range r.byID {
		if d.MedicationID != medicationID {
			continue
		}
		if d.ScheduledTime.Before(from) || d.ScheduledTime.After(to) {
			continue
		}
		out[d.Status]++
	}
	return out, nil
}

func (r *doseLogRepo) TransitionFromPending(ctx context.Context, t doselogs.Transition) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[t.ID]
	if !ok {
		return false, ErrNotFound
	}
	if d.Status != doselogs.StatusPending {
		return false, nil
	}

	d.Status = t.To
	if t.TakenTime != nil {
		tt := *t.TakenTime
		d.TakenTime = &tt
	}
	if t.Notes != nil {
		d.Notes = *t.Notes
	}
	d.UpdatedAt = t.At
	r.byID[t.ID] = d
	return true, nil
}

// restore pisa la fila con d (rollback del Transactor).
func (r *doseLogRepo) restore(d doselogs.DoseLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = d
}

func (r *doseLogRepo) snapshot(keep func(doselogs.DoseLog) bool) []doselogs.DoseLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doselogs.DoseLog, 0)
	for _, d := range r.byID {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTime.Equal(out[j].ScheduledTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledTime.Before(out[j].ScheduledTime)
	})
	return out
}

func (r *doseLogRepo) ownedBy(ctx context.Context, ownerUserID string, items []doselogs.DoseLog) []doselogs.DoseLog {
	owners := make(map[string]string)
	out := make([]doselogs.DoseLog, 0, len(items))
	for _, d := range items {
		owner, ok := owners[d.MedicationID]
		if !ok {
			owner = ownerOf(ctx, r.meds, d.MedicationID)
			owners[d.MedicationID] = owner
		}
		if owner == ownerUserID {
			out = append(out, d)
		}
	}
	return out
}

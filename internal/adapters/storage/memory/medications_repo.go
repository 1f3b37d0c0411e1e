package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pilltrack/internal/domain/medications"
)

type medicationRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.Medication
}

func NewMedicationsRepo() medications.Repository {
	return &medicationRepo{
		byID: make(map[string]medications.Medication),
	}
}

func (r *medicationRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return ErrConflict
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicationRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *medicationRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0)
	for _, m := range r.byID {
		if m.OwnerUserID == ownerUserID {
			out = append(out, m)
		}
	}
	sortMedications(out)
	return out, nil
}

func (r *medicationRepo) ListOwnerIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range r.byID {
		if _, ok := seen[m.OwnerUserID]; ok {
			continue
		}
		seen[m.OwnerUserID] = struct{}{}
		out = append(out, m.OwnerUserID)
	}
	sort.Strings(out)
	return out, nil
}

func (r *medicationRepo) ListLowStockByOwner(ctx context.Context, ownerUserID string, maxUnits int) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0)
	for _, m := range r.byID {
		if m.OwnerUserID != ownerUserID || m.Status != medications.StatusActive {
			continue
		}
		if m.Inventory <= maxUnits {
			out = append(out, m)
		}
	}
	sortMedications(out)
	return out, nil
}

func (r *medicationRepo) DecrementInventory(ctx context.Context, id string, units int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if m.Inventory < units {
		return false, nil
	}
	m.Inventory -= units
	r.byID[id] = m
	return true, nil
}

func (r *medicationRepo) addInventory(id string, units int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byID[id]; ok {
		m.Inventory += units
		r.byID[id] = m
	}
}

// orden estable: created_at asc, luego id
func sortMedications(items []medications.Medication) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/domain/medications"
	"pilltrack/internal/domain/reminders"
)

// fakeStore cubre medicaciones, recordatorios y tomas en memoria.
type fakeStore struct {
	mu sync.Mutex

	meds  map[string]medications.Medication
	rems  []reminders.Reminder
	doses map[string]doselogs.DoseLog

	listErr     error
	ownerErr    map[string]error
	transitions int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		meds:     map[string]medications.Medication{},
		doses:    map[string]doselogs.DoseLog{},
		ownerErr: map[string]error{},
	}
}

func (s *fakeStore) ListActiveByType(ctx context.Context, t reminders.Type) ([]reminders.Reminder, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]reminders.Reminder, 0)
	for _, r := range s.rems {
		if r.Active && r.Type == t {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	m, ok := s.meds[id]
	if !ok {
		return medications.Medication{}, errors.New("medication not found")
	}
	return m, nil
}

func (s *fakeStore) ListOwnerIDs(ctx context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	set := map[string]struct{}{}
	for _, m := range s.meds {
		set[m.OwnerUserID] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeStore) ListLowStockByOwner(ctx context.Context, owner string, maxUnits int) ([]medications.Medication, error) {
	if err := s.ownerErr[owner]; err != nil {
		return nil, err
	}
	out := make([]medications.Medication, 0)
	for _, m := range s.meds {
		if m.OwnerUserID == owner && m.Status == medications.StatusActive && m.Inventory <= maxUnits {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) Exists(ctx context.Context, medicationID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsLocked(medicationID, at), nil
}

func (s *fakeStore) existsLocked(medicationID string, at time.Time) bool {
	for _, d := range s.doses {
		if d.MedicationID == medicationID && d.ScheduledTime.Equal(at) {
			return true
		}
	}
	return false
}

func (s *fakeStore) CreateIfAbsent(ctx context.Context, d doselogs.DoseLog) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsLocked(d.MedicationID, d.ScheduledTime) {
		return false, nil
	}
	s.doses[d.ID] = d
	return true, nil
}

func (s *fakeStore) ListPendingBefore(ctx context.Context, owner string, cutoff time.Time) ([]doselogs.DoseLog, error) {
	if err := s.ownerErr[owner]; err != nil {
		return nil, err
	}
	out := make([]doselogs.DoseLog, 0)
	for _, d := range s.doses {
		if s.meds[d.MedicationID].OwnerUserID != owner {
			continue
		}
		if d.Status == doselogs.StatusPending && !d.ScheduledTime.After(cutoff) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) TransitionFromPending(ctx context.Context, t doselogs.Transition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.doses[t.ID]
	if !ok {
		return false, errors.New("dose not found")
	}
	if d.Status != doselogs.StatusPending {
		return false, nil
	}
	d.Status = t.To
	d.UpdatedAt = t.At
	s.doses[t.ID] = d
	s.transitions++
	return true, nil
}

func (s *fakeStore) dosesFor(medicationID string) []doselogs.DoseLog {
	out := make([]doselogs.DoseLog, 0)
	for _, d := range s.doses {
		if d.MedicationID == medicationID {
			out = append(out, d)
		}
	}
	return out
}

type reminderCall struct {
	UserID, Medication, Dosage string
	DoseTime                   reminders.TimeOfDay
}

type lowStockCall struct {
	UserID, Medication string
	Inventory          int
}

// fakeNotifier registra las llamadas y puede fallar por medicación.
type fakeNotifier struct {
	mu      sync.Mutex
	failFor map[string]error

	reminders []reminderCall
	lowStock  []lowStockCall
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: map[string]error{}}
}

func (n *fakeNotifier) NotifyReminder(ctx context.Context, userID, medicationName, dosage string, doseTime reminders.TimeOfDay) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, reminderCall{userID, medicationName, dosage, doseTime})
	return n.failFor[medicationName]
}

func (n *fakeNotifier) NotifyLowStock(ctx context.Context, userID, medicationName string, inventory int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lowStock = append(n.lowStock, lowStockCall{userID, medicationName, inventory})
	return n.failFor[medicationName]
}

func ptr[T any](v T) *T { return &v }

package jobs

import (
	"context"
	"fmt"
	"time"

	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/domain/medications"
	"pilltrack/internal/domain/reminders"
	"pilltrack/internal/platform/clock"
	"pilltrack/internal/platform/logger"
)

// Nombres estables de cada sweep (CLI, scheduler y endpoint admin).
const (
	NameReminders   = "reminders"
	NameMissedDoses = "missed-doses"
	NameLowStock    = "low-stock"
)

// Sweep es una unidad ejecutable por el trigger externo (cron, CLI, endpoint admin).
// Run solo devuelve error si no pudo leer la lista inicial de candidatos;
// los fallos por ítem quedan en el Summary.
type Sweep interface {
	Name() string
	Run(ctx context.Context) (Summary, error)
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// ItemResult es el resultado de procesar un candidato (reminder, toma, medicación).
type ItemResult struct {
	Key     string  `json:"key"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

type Summary struct {
	Sweep      string
	StartedAt  time.Time
	FinishedAt time.Time
	Items      []ItemResult
}

func (s Summary) count(o Outcome) int {
	n := 0
	for _, it := range s.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}

func (s Summary) Succeeded() int { return s.count(OutcomeSucceeded) }
func (s Summary) Skipped() int   { return s.count(OutcomeSkipped) }
func (s Summary) Failed() int    { return s.count(OutcomeFailed) }

func (s Summary) Duration() time.Duration { return s.FinishedAt.Sub(s.StartedAt) }

// Stores que consume el motor. Los repositorios de dominio ya los cumplen.

type ReminderStore interface {
	ListActiveByType(ctx context.Context, t reminders.Type) ([]reminders.Reminder, error)
}

type MedicationStore interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
	ListOwnerIDs(ctx context.Context) ([]string, error)
	ListLowStockByOwner(ctx context.Context, ownerUserID string, maxUnits int) ([]medications.Medication, error)
}

type DoseLogStore interface {
	Exists(ctx context.Context, medicationID string, scheduledTime time.Time) (bool, error)
	CreateIfAbsent(ctx context.Context, d doselogs.DoseLog) (bool, error)
	ListPendingBefore(ctx context.Context, ownerUserID string, cutoff time.Time) ([]doselogs.DoseLog, error)
	TransitionFromPending(ctx context.Context, t doselogs.Transition) (bool, error)
}

// Notifier es el gateway de notificaciones. Los errores se registran y no cortan el sweep.
type Notifier interface {
	NotifyReminder(ctx context.Context, userID, medicationName, dosage string, doseTime reminders.TimeOfDay) error
	NotifyLowStock(ctx context.Context, userID, medicationName string, inventory int) error
}

type Deps struct {
	Reminders   ReminderStore
	Medications MedicationStore
	DoseLogs    DoseLogStore
	Notifier    Notifier

	Clock  clock.Clock
	Logger logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Logger == nil {
		d.Logger = logger.Discard()
	}
	return d
}

// All arma los tres sweeps en el orden en que se registran en el scheduler.
func All(d Deps) []Sweep {
	return []Sweep{
		NewReminderEvaluator(d),
		NewMissedDoseSweeper(d),
		NewLowStockNotifier(d),
	}
}

func ByName(sweeps []Sweep, name string) (Sweep, bool) {
	for _, s := range sweeps {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// runItem ejecuta fn aislando panics: un candidato roto no aborta el resto.
func runItem(key string, fn func() ItemResult) (res ItemResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ItemResult{Key: key, Outcome: OutcomeFailed, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()
	res = fn()
	if res.Key == "" {
		res.Key = key
	}
	return res
}

func succeeded(key string) ItemResult {
	return ItemResult{Key: key, Outcome: OutcomeSucceeded}
}

func skipped(key, reason string) ItemResult {
	return ItemResult{Key: key, Outcome: OutcomeSkipped, Reason: reason}
}

func failed(key string, err error) ItemResult {
	return ItemResult{Key: key, Outcome: OutcomeFailed, Reason: err.Error()}
}

// tally agrega resultados y deja el log por ítem fallido.
type tally struct {
	log     logger.Logger
	summary Summary
}

func newTally(name string, clk clock.Clock, log logger.Logger) *tally {
	return &tally{
		log:     log,
		summary: Summary{Sweep: name, StartedAt: clk.Now()},
	}
}

func (t *tally) add(res ItemResult) {
	if res.Outcome == OutcomeFailed {
		t.log.Error("sweep item failed", map[string]any{"key": res.Key, "reason": res.Reason})
	}
	t.summary.Items = append(t.summary.Items, res)
}

func (t *tally) finish(clk clock.Clock) Summary {
	t.summary.FinishedAt = clk.Now()
	t.log.Info("sweep finished", map[string]any{
		"candidates":  len(t.summary.Items),
		"succeeded":   t.summary.Succeeded(),
		"skipped":     t.summary.Skipped(),
		"failed":      t.summary.Failed(),
		"duration_ms": t.summary.Duration().Milliseconds(),
	})
	return t.summary
}

package jobs

import (
	"context"
	"fmt"
	"time"

	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/domain/reminders"
	"pilltrack/internal/platform/clock"
	"pilltrack/internal/platform/logger"

	"github.com/google/uuid"
)

// ReminderTolerance es la mitad del ancho de la ventana de disparo.
// Tiene que ser mayor que la mitad del tick del scheduler (5 min) para no saltarse ventanas.
const ReminderTolerance = 3 * time.Minute

// ReminderEvaluator dispara los recordatorios FIXED_TIME cuya ventana contiene "now",
// creando la toma PENDING (una sola por medicación y hora) y avisando al usuario.
type ReminderEvaluator struct {
	reminders ReminderStore
	meds      MedicationStore
	doses     DoseLogStore
	notifier  Notifier

	clock clock.Clock
	log   logger.Logger
}

func NewReminderEvaluator(d Deps) *ReminderEvaluator {
	d = d.withDefaults()
	return &ReminderEvaluator{
		reminders: d.Reminders,
		meds:      d.Medications,
		doses:     d.DoseLogs,
		notifier:  d.Notifier,
		clock:     d.Clock,
		log:       d.Logger.With(map[string]any{"sweep": NameReminders}),
	}
}

func (e *ReminderEvaluator) Name() string { return NameReminders }

func (e *ReminderEvaluator) Run(ctx context.Context) (Summary, error) {
	t := newTally(NameReminders, e.clock, e.log)
	now := e.clock.Now()

	items, err := e.reminders.ListActiveByType(ctx, reminders.TypeFixedTime)
	if err != nil {
		return t.finish(e.clock), fmt.Errorf("list reminders: %w", err)
	}
	e.log.Debug("sweep started", map[string]any{"reminders": len(items), "now": now})

	for _, r := range items {
		if err := ctx.Err(); err != nil {
			return t.finish(e.clock), err
		}
		r := r
		t.add(runItem(r.ID, func() ItemResult { return e.evaluate(ctx, now, r) }))
	}
	return t.finish(e.clock), nil
}

func (e *ReminderEvaluator) evaluate(ctx context.Context, now time.Time, r reminders.Reminder) ItemResult {
	if !r.Active || r.Type != reminders.TypeFixedTime {
		return skipped(r.ID, "reminder not active")
	}

	med, err := e.meds.GetByID(ctx, r.MedicationID)
	if err != nil {
		return failed(r.ID, fmt.Errorf("load medication %s: %w", r.MedicationID, err))
	}
	if !med.ActiveOn(now) {
		return skipped(r.ID, "medication not active today")
	}

	doseTime, err := reminders.ParseTimeOfDay(r.ScheduleInfo)
	if err != nil {
		// no se desactiva: se reintenta en el próximo tick
		e.log.Warn("unparsable reminder time", map[string]any{
			"reminder_id":   r.ID,
			"schedule_info": r.ScheduleInfo,
			"err":           err,
		})
		return skipped(r.ID, err.Error())
	}

	scheduled, ok := DueDose(now, doseTime, r.LeadTime())
	if !ok {
		return skipped(r.ID, "outside trigger window")
	}
	// ventana que cruza medianoche: la toma es de otro día
	if !med.ActiveOn(scheduled) {
		return skipped(r.ID, "medication not active on dose day")
	}

	exists, err := e.doses.Exists(ctx, med.ID, scheduled)
	if err != nil {
		return failed(r.ID, fmt.Errorf("check dose log: %w", err))
	}
	if exists {
		return skipped(r.ID, "dose already logged")
	}

	created, err := e.doses.CreateIfAbsent(ctx, doselogs.DoseLog{
		ID:            uuid.NewString(),
		MedicationID:  med.ID,
		ScheduledTime: scheduled,
		Status:        doselogs.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return failed(r.ID, fmt.Errorf("create dose log: %w", err))
	}
	if !created {
		return skipped(r.ID, "dose already logged")
	}

	if err := e.notifier.NotifyReminder(ctx, med.OwnerUserID, med.Name, med.Dosage, doseTime); err != nil {
		return failed(r.ID, fmt.Errorf("notify reminder: %w", err))
	}

	e.log.Info("reminder fired", map[string]any{
		"reminder_id":    r.ID,
		"medication_id":  med.ID,
		"scheduled_time": scheduled,
	})
	return succeeded(r.ID)
}

// DueDose devuelve la hora de la toma cuyo disparo (dosis - lead) está a ±ReminderTolerance de now.
// La toma candidata cae el día de now+lead; también se prueban el día siguiente y el anterior
// para ventanas que cruzan medianoche.
func DueDose(now time.Time, t reminders.TimeOfDay, lead time.Duration) (time.Time, bool) {
	target := now.Add(lead)
	for _, offset := range []int{0, 1, -1} {
		dose := t.On(target.AddDate(0, 0, offset))
		trigger := dose.Add(-lead)
		if now.Before(trigger.Add(-ReminderTolerance)) || now.After(trigger.Add(ReminderTolerance)) {
			continue
		}
		return dose, true
	}
	return time.Time{}, false
}

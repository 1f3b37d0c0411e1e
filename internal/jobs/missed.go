package jobs

import (
	"context"
	"fmt"
	"time"

	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/platform/clock"
	"pilltrack/internal/platform/logger"
)

// MissedDoseGracePeriod: una toma PENDING más vieja que esto pasa a MISSED.
const MissedDoseGracePeriod = 6 * time.Hour

// MissedDoseSweeper marca como MISSED las tomas no confirmadas. No notifica.
type MissedDoseSweeper struct {
	meds  MedicationStore
	doses DoseLogStore

	clock clock.Clock
	log   logger.Logger
}

func NewMissedDoseSweeper(d Deps) *MissedDoseSweeper {
	d = d.withDefaults()
	return &MissedDoseSweeper{
		meds:  d.Medications,
		doses: d.DoseLogs,
		clock: d.Clock,
		log:   d.Logger.With(map[string]any{"sweep": NameMissedDoses}),
	}
}

func (s *MissedDoseSweeper) Name() string { return NameMissedDoses }

func (s *MissedDoseSweeper) Run(ctx context.Context) (Summary, error) {
	t := newTally(NameMissedDoses, s.clock, s.log)
	now := s.clock.Now()
	cutoff := now.Add(-MissedDoseGracePeriod)

	owners, err := s.meds.ListOwnerIDs(ctx)
	if err != nil {
		return t.finish(s.clock), fmt.Errorf("list owners: %w", err)
	}

	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return t.finish(s.clock), err
		}

		var pending []doselogs.DoseLog
		res := runItem("owner:"+owner, func() ItemResult {
			var err error
			pending, err = s.doses.ListPendingBefore(ctx, owner, cutoff)
			if err != nil {
				return failed("owner:"+owner, fmt.Errorf("list pending doses: %w", err))
			}
			return succeeded("owner:" + owner)
		})
		if res.Outcome != OutcomeSucceeded {
			t.add(res)
			continue
		}

		for _, d := range pending {
			d := d
			t.add(runItem(d.ID, func() ItemResult { return s.expire(ctx, now, cutoff, d) }))
		}
	}
	return t.finish(s.clock), nil
}

func (s *MissedDoseSweeper) expire(ctx context.Context, now, cutoff time.Time, d doselogs.DoseLog) ItemResult {
	if d.Status != doselogs.StatusPending {
		return skipped(d.ID, "already "+string(d.Status))
	}
	if d.ScheduledTime.After(cutoff) {
		return skipped(d.ID, "within grace period")
	}

	applied, err := s.doses.TransitionFromPending(ctx, doselogs.Transition{
		ID: d.ID,
		To: doselogs.StatusMissed,
		At: now,
	})
	if err != nil {
		return failed(d.ID, fmt.Errorf("mark missed: %w", err))
	}
	if !applied {
		// el usuario la confirmó entre la lectura y el update
		return skipped(d.ID, "no longer pending")
	}
	return succeeded(d.ID)
}

package jobs

import (
	"context"
	"fmt"

	"pilltrack/internal/domain/medications"
	"pilltrack/internal/platform/clock"
	"pilltrack/internal/platform/logger"
)

// Umbrales de stock bajo (ambos inclusivos).
const (
	LowStockUnits = 5
	LowStockDays  = 5
)

// LowStockNotifier avisa por cada medicación ACTIVE con poco stock.
// No deduplica: mientras la condición siga, se avisa en cada tick.
type LowStockNotifier struct {
	meds     MedicationStore
	notifier Notifier

	clock clock.Clock
	log   logger.Logger
}

func NewLowStockNotifier(d Deps) *LowStockNotifier {
	d = d.withDefaults()
	return &LowStockNotifier{
		meds:     d.Medications,
		notifier: d.Notifier,
		clock:    d.Clock,
		log:      d.Logger.With(map[string]any{"sweep": NameLowStock}),
	}
}

func (n *LowStockNotifier) Name() string { return NameLowStock }

func (n *LowStockNotifier) Run(ctx context.Context) (Summary, error) {
	t := newTally(NameLowStock, n.clock, n.log)

	owners, err := n.meds.ListOwnerIDs(ctx)
	if err != nil {
		return t.finish(n.clock), fmt.Errorf("list owners: %w", err)
	}

	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return t.finish(n.clock), err
		}

		var meds []medications.Medication
		res := runItem("owner:"+owner, func() ItemResult {
			var err error
			meds, err = n.meds.ListLowStockByOwner(ctx, owner, LowStockUnits)
			if err != nil {
				return failed("owner:"+owner, fmt.Errorf("list low stock: %w", err))
			}
			return succeeded("owner:" + owner)
		})
		if res.Outcome != OutcomeSucceeded {
			t.add(res)
			continue
		}

		for _, m := range meds {
			m := m
			t.add(runItem(m.ID, func() ItemResult { return n.check(ctx, m) }))
		}
	}
	return t.finish(n.clock), nil
}

func (n *LowStockNotifier) check(ctx context.Context, m medications.Medication) ItemResult {
	if m.Status != medications.StatusActive {
		return skipped(m.ID, "medication not active")
	}
	if m.Inventory > LowStockUnits {
		return skipped(m.ID, "inventory above threshold")
	}
	days := m.DaysRemaining()
	if days > LowStockDays {
		return skipped(m.ID, "enough days remaining")
	}

	if err := n.notifier.NotifyLowStock(ctx, m.OwnerUserID, m.Name, m.Inventory); err != nil {
		return failed(m.ID, fmt.Errorf("notify low stock: %w", err))
	}

	n.log.Info("low stock alert sent", map[string]any{
		"medication_id":  m.ID,
		"inventory":      m.Inventory,
		"days_remaining": days,
	})
	return succeeded(m.ID)
}

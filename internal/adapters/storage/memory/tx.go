package memory

import (
	"context"
	"fmt"
	"sync"

	"pilltrack/internal/domain/doselogs"
	"pilltrack/internal/domain/medications"
)

// Transactor da atomicidad a MarkTaken sobre los repos in-memory:
// cada escritura dentro de fn registra su undo y, si fn falla, se deshacen en orden inverso.
type Transactor struct {
	mu    sync.Mutex
	doses *doseLogRepo
	meds  *medicationRepo
}

// NewTransactor requiere los repos creados por este paquete.
func NewTransactor(doses doselogs.Repository, meds medications.Repository) (*Transactor, error) {
	d, ok := doses.(*doseLogRepo)
	if !ok {
		return nil, fmt.Errorf("memory transactor: unsupported dose log repo %T", doses)
	}
	m, ok := meds.(*medicationRepo)
	if !ok {
		return nil, fmt.Errorf("memory transactor: unsupported medication repo %T", meds)
	}
	return &Transactor{doses: d, meds: m}, nil
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s doselogs.TxStores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var undo []func()
	st := doselogs.TxStores{
		Doses: &txDoses{doseLogRepo: t.doses, undo: &undo},
		Meds:  &txMeds{medicationRepo: t.meds, undo: &undo},
	}

	if err := fn(ctx, st); err != nil {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		return err
	}
	return nil
}

type txDoses struct {
	*doseLogRepo
	undo *[]func()
}

func (r *txDoses) TransitionFromPending(ctx context.Context, t doselogs.Transition) (bool, error) {
	prev, err := r.doseLogRepo.GetByID(ctx, t.ID)
	if err != nil {
		return false, err
	}
	ok, err := r.doseLogRepo.TransitionFromPending(ctx, t)
	if ok {
		*r.undo = append(*r.undo, func() { r.doseLogRepo.restore(prev) })
	}
	return ok, err
}

type txMeds struct {
	*medicationRepo
	undo *[]func()
}

func (r *txMeds) DecrementInventory(ctx context.Context, id string, units int) (bool, error) {
	ok, err := r.medicationRepo.DecrementInventory(ctx, id, units)
	if ok {
		*r.undo = append(*r.undo, func() { r.medicationRepo.addInventory(id, units) })
	}
	return ok, err
}

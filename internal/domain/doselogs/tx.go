package doselogs

import "context"

// TxStores son los stores que ve fn dentro de una transacción.
type TxStores struct {
	Doses Repository
	Meds  Medications
}

// Transactor corre fn de forma atómica: si fn devuelve error no queda ninguna de sus escrituras.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s TxStores) error) error
}

// direct corre fn sobre los stores del servicio, sin transacción.
// Es el default hasta que se configura un Transactor real (postgres / memory).
type direct struct {
	stores TxStores
}

func (d direct) WithinTx(ctx context.Context, fn func(ctx context.Context, s TxStores) error) error {
	return fn(ctx, d.stores)
}

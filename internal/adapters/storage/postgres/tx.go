package postgres

import (
	"context"
	"database/sql"

	"pilltrack/internal/domain/doselogs"
)

// WithTx corre fn dentro de una transacción; commit si fn no falla, rollback si falla o hace panic.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// Transactor arma los repos de dosis y medicaciones sobre la misma *sql.Tx.
type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s doselogs.TxStores) error) error {
	return WithTx(ctx, t.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, doselogs.TxStores{
			Doses: NewDoseLogsRepo(tx),
			Meds:  NewMedicationsRepo(tx),
		})
	})
}

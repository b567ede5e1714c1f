package pgdb

import (
	"context"
	"database/sql"

	"pooled-auction-api/pkg/postgres"

	"github.com/pkg/errors"
)

type Transactor struct {
	*postgres.Postgres
}

func NewTransactor(pgdb *postgres.Postgres) *Transactor {
	return &Transactor{pgdb}
}

// WithinTx runs fn inside a read committed transaction. Order rows are locked
// explicitly with GetOrderByIdForUpdate, which serializes writers per order.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := postgres.TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := t.Database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err = fn(postgres.WithTx(ctx, tx)); err != nil {
		if e := tx.Rollback(); e != nil && !errors.Is(e, sql.ErrTxDone) {
			return errors.Wrapf(err, "rollback failed: %v", e)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}

	return nil
}

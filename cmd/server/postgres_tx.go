package main

import (
	"context"
	"database/sql"
	"time"

	batchservice "agriqcert/internal/batch/service"
	batchstore "agriqcert/internal/batch/store"
	credservice "agriqcert/internal/credential/service"
	credstore "agriqcert/internal/credential/store"
	dErrors "agriqcert/pkg/domain-errors"
)

const defaultPostgresTxTimeout = 5 * time.Second

// lockBatchRow serializes writers on one batch. A batch that does not exist
// yet (CreateBatch) locks nothing, which is fine because its id is fresh.
const lockBatchRow = `SELECT id FROM batches WHERE id = $1 FOR UPDATE`

// runPostgresTx opens a transaction, takes the batch row lock for key and
// commits only if fn succeeds.
func runPostgresTx(ctx context.Context, db *sql.DB, key string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPostgresTxTimeout)
		defer cancel()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	if _, err := tx.ExecContext(ctx, lockBatchRow, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "lock batch")
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}

type batchPostgresTx struct {
	db *sql.DB
}

func newBatchPostgresTx(db *sql.DB) *batchPostgresTx {
	return &batchPostgresTx{db: db}
}

func (t *batchPostgresTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context, store batchservice.Store) error) error {
	return runPostgresTx(ctx, t.db, key, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, batchstore.NewPostgresTx(tx))
	})
}

type credentialStores struct {
	batches     *batchstore.PostgresStore
	credentials *credstore.PostgresStore
}

func (s credentialStores) Batches() credservice.BatchStore { return s.batches }
func (s credentialStores) Credentials() credservice.Store  { return s.credentials }

type credentialPostgresTx struct {
	db *sql.DB
}

func newCredentialPostgresTx(db *sql.DB) *credentialPostgresTx {
	return &credentialPostgresTx{db: db}
}

func (t *credentialPostgresTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context, stores credservice.Stores) error) error {
	return runPostgresTx(ctx, t.db, key, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, credentialStores{
			batches:     batchstore.NewPostgresTx(tx),
			credentials: credstore.NewPostgresTx(tx),
		})
	})
}

package service

import (
	"context"
	"time"

	"agriqcert/internal/platform/metrics"
	dErrors "agriqcert/pkg/domain-errors"
	platformsync "agriqcert/pkg/platform/sync"
)

// TxRunner runs fn atomically with respect to other transactions on the same batch.
type TxRunner interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context, store Store) error) error
}

const defaultTxTimeout = 5 * time.Second

// ShardedTx serializes in-memory mutations per batch with a sharded mutex.
// Share the mutex with any other service that mutates the same batches.
type ShardedTx struct {
	mu      *platformsync.ShardedMutex
	store   Store
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewShardedTx(mu *platformsync.ShardedMutex, store Store, m *metrics.Metrics) *ShardedTx {
	return &ShardedTx{mu: mu, store: store, timeout: defaultTxTimeout, metrics: m}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := t.mu.Lock(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: lock wait exceeded")
	}
	defer t.mu.Unlock(key)
	t.metrics.ObserveTxLockWait(time.Since(start))

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx, t.store)
}

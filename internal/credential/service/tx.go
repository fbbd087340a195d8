package service

import (
	"context"
	"time"

	"agriqcert/internal/platform/metrics"
	dErrors "agriqcert/pkg/domain-errors"
	platformsync "agriqcert/pkg/platform/sync"
)

const defaultTxTimeout = 5 * time.Second

// Stores is the transactional view handed to RunInTx callbacks.
type Stores interface {
	Batches() BatchStore
	Credentials() Store
}

// TxRunner runs fn atomically with respect to other transactions on the same batch.
type TxRunner interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context, stores Stores) error) error
}

type memoryStores struct {
	batches     BatchStore
	credentials Store
}

func (m memoryStores) Batches() BatchStore { return m.batches }
func (m memoryStores) Credentials() Store  { return m.credentials }

// ShardedTx serializes in-memory issuance per batch. The mutex must be the
// one the batch service uses so inspections and issuance never interleave.
type ShardedTx struct {
	mu      *platformsync.ShardedMutex
	stores  memoryStores
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewShardedTx(mu *platformsync.ShardedMutex, batches BatchStore, credentials Store, m *metrics.Metrics) *ShardedTx {
	return &ShardedTx{
		mu:      mu,
		stores:  memoryStores{batches: batches, credentials: credentials},
		timeout: defaultTxTimeout,
		metrics: m,
	}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context, stores Stores) error) error {
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
	return fn(ctx, t.stores)
}

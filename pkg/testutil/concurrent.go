package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/sentinel"
)

// ConcurrentResult tallies outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds
}

// RunConcurrent runs fn in n goroutines released together and classifies each result.
// Conflicts include CodeConflict and CodeCredentialAlreadyIssued domain errors.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg                                   sync.WaitGroup
		successes, errs, conflicts, notFound atomic.Int32
	)
	start := make(chan struct{})

	for i := range n {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case isConflict(err):
				conflicts.Add(1)
			case errors.Is(err, sentinel.ErrNotFound),
				dErrors.HasCode(err, dErrors.CodeNotFound),
				dErrors.HasCode(err, dErrors.CodeCredentialNotFound):
				notFound.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFound.Load(),
	}
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict) ||
		dErrors.HasCode(err, dErrors.CodeConflict) ||
		dErrors.HasCode(err, dErrors.CodeCredentialAlreadyIssued)
}

// RunConcurrentCollect runs fn in n goroutines and returns every error for inspection.
func RunConcurrentCollect(n int, fn func(idx int) error) (successes int32, errs []error) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		count atomic.Int32
	)
	for i := range n {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := fn(idx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			count.Add(1)
		}(i)
	}
	wg.Wait()
	return count.Load(), errs
}

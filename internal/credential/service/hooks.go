package service

import (
	"context"
	"fmt"
)

// postCommitHook is a soft side effect run after issuance commits. Its
// failure is logged and never undoes the issuance.
type postCommitHook struct {
	name string
	fn   func(ctx context.Context) error
}

func (s *Service) runPostCommit(ctx context.Context, hooks ...postCommitHook) {
	for _, h := range hooks {
		if err := runHook(ctx, h); err != nil {
			s.logger.WarnContext(ctx, "post-commit hook failed",
				"hook", h.name,
				"error", err,
			)
		}
	}
}

func runHook(ctx context.Context, h postCommitHook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.fn(ctx)
}

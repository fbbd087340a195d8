package audit

import (
	"context"
	"errors"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// MultiStore fans an event out to every sink and joins their errors.
// A failing sink does not prevent the others from receiving the event.
type MultiStore []Store

func (m MultiStore) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package store

import (
	"context"
	"sync"

	"agriqcert/internal/verification/models"
)

// InMemoryStore is a fixed-size ring of the most recent activity rows.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []models.Activity
	next    int
	full    bool
}

func NewInMemoryStore() *InMemoryStore {
	return NewInMemoryStoreN(models.ActivityCapacity)
}

// NewInMemoryStoreN retains the last n rows.
func NewInMemoryStoreN(n int) *InMemoryStore {
	if n <= 0 {
		n = models.ActivityCapacity
	}
	return &InMemoryStore{entries: make([]models.Activity, n)}
}

func (s *InMemoryStore) Append(_ context.Context, a models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = a
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	size := s.next
	if s.full {
		size = len(s.entries)
	}
	limit = min(limit, size)
	out := make([]models.Activity, 0, max(limit, 0))
	for i := range limit {
		idx := (s.next - 1 - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out, nil
}

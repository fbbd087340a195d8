package store

import (
	"context"
	"slices"
	"sync"

	"agriqcert/internal/batch/models"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/sentinel"
)

// InMemoryStore keeps batches in a map. Reads and writes copy so callers never
// share state with the store.
type InMemoryStore struct {
	mu      sync.RWMutex
	batches map[domain.BatchID]*models.Batch
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{batches: make(map[domain.BatchID]*models.Batch)}
}

func (s *InMemoryStore) Create(_ context.Context, b *models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.batches[b.ID]; exists {
		return sentinel.ErrConflict
	}
	s.batches[b.ID] = b.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.BatchID) (*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return b.Clone(), nil
}

// List returns matching batches, newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		if filter.ExporterID != nil && b.ExporterID != *filter.ExporterID {
			continue
		}
		if filter.Agency != "" && b.AssignedAgency != filter.Agency {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Batch) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Update persists the mutable header fields: status, agency assignment,
// schedule and updated-at.
func (s *InMemoryStore) Update(_ context.Context, b *models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.batches[b.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Status = b.Status
	stored.AssignedAgency = b.AssignedAgency
	if b.ScheduledAt != nil {
		t := *b.ScheduledAt
		stored.ScheduledAt = &t
	} else {
		stored.ScheduledAt = nil
	}
	stored.UpdatedAt = b.UpdatedAt
	return nil
}

// AddInspection stores insp as the batch's latest inspection.
func (s *InMemoryStore) AddInspection(_ context.Context, insp *models.Inspection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.batches[insp.BatchID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c := *insp
	stored.Inspection = &c
	return nil
}

func (s *InMemoryStore) AppendHistory(_ context.Context, id domain.BatchID, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.batches[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.History = append(stored.History, entry)
	return nil
}

func (s *InMemoryStore) AddDocuments(_ context.Context, id domain.BatchID, docs []models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.batches[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Documents = append(stored.Documents, docs...)
	return nil
}


package store

import (
	"context"
	"sync"

	"agriqcert/internal/credential/models"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/sentinel"
)

// InMemoryStore keeps credentials in maps. The ACTIVE-per-batch rule is
// checked under the store lock, mirroring the Postgres partial unique index.
type InMemoryStore struct {
	mu          sync.RWMutex
	credentials map[domain.CredentialID]*models.Credential
	byBatch     map[domain.BatchID][]domain.CredentialID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		credentials: make(map[domain.CredentialID]*models.Credential),
		byBatch:     make(map[domain.BatchID][]domain.CredentialID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[c.ID]; exists {
		return sentinel.ErrConflict
	}
	if c.Status == models.StatusActive && s.activeLocked(c.BatchID) != nil {
		return sentinel.ErrConflict
	}
	s.credentials[c.ID] = c.Clone()
	s.byBatch[c.BatchID] = append(s.byBatch[c.BatchID], c.ID)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemoryStore) FindActiveByBatch(_ context.Context, batchID domain.BatchID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.activeLocked(batchID); c != nil {
		return c.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// LatestByBatch returns the most recently issued credential for the batch, in any status.
func (s *InMemoryStore) LatestByBatch(_ context.Context, batchID domain.BatchID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Credential
	for _, id := range s.byBatch[batchID] {
		c := s.credentials[id]
		if latest == nil || !c.IssuedAt.Before(latest.IssuedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest.Clone(), nil
}

// RevokeActive flips the batch's ACTIVE credential to REVOKED. With nothing
// active it returns sentinel.ErrNotFound and changes nothing.
func (s *InMemoryStore) RevokeActive(_ context.Context, batchID domain.BatchID, rev models.Revocation) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.activeLocked(batchID)
	if c == nil {
		return nil, sentinel.ErrNotFound
	}
	at := rev.At
	by := rev.By
	c.Status = models.StatusRevoked
	c.RevokedAt = &at
	c.RevokedBy = &by
	c.RevocationReason = rev.Reason
	return c.Clone(), nil
}

func (s *InMemoryStore) activeLocked(batchID domain.BatchID) *models.Credential {
	for _, id := range s.byBatch[batchID] {
		if c := s.credentials[id]; c.Status == models.StatusActive {
			return c
		}
	}
	return nil
}

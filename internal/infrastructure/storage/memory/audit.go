package memory

import (
	"context"
	"sync"

	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/audit"
)

var _ audit.Store = (*AuditStore)(nil)

// AuditStore keeps audit entries in process memory.
type AuditStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

// NewAuditStore creates an empty audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Record appends an entry.
func (s *AuditStore) Record(ctx context.Context, entry audit.Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

// History returns the newest entries of an entity first.
func (s *AuditStore) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []audit.Entry{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.EntityType != entityType || e.EntityID != entityID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

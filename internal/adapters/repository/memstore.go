package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/traffixlab/traffix/internal/domain/model"
	"github.com/traffixlab/traffix/pkg/metrics"
)

// MemStore is the in-memory Store. Reads vastly outnumber writes, so a
// RWMutex around an immutable row slice is all the coordination needed:
// Replace installs a fresh slice and readers copy on the way out.
type MemStore struct {
	mu        sync.RWMutex
	rows      []model.Row
	version   string
	updatedAt time.Time
}

// NewMemStore creates an empty in-memory snapshot store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Replace swaps in a new snapshot and returns its version id.
func (s *MemStore) Replace(_ context.Context, rows []model.Row) string {
	stored := make([]model.Row, len(rows))
	copy(stored, rows)
	version := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	s.rows = stored
	s.version = version
	s.updatedAt = now
	s.mu.Unlock()

	metrics.UpdateSnapshotRows(len(stored))
	metrics.UpdateSnapshotLastUnix(now.Unix())
	metrics.RecordSnapshotApplied()
	return version
}

// Snapshot returns a copy of the stored rows.
func (s *MemStore) Snapshot(_ context.Context) model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(model.Snapshot, len(s.rows))
	copy(out, s.rows)
	return out
}

// Version returns the current snapshot version id.
func (s *MemStore) Version(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Count returns the number of stored rows.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// UpdatedAt returns when the snapshot was last replaced.
func (s *MemStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

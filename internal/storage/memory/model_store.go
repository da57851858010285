package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// ModelStore is an in-memory implementation of storage.ModelStore.
type ModelStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ModelRecord // keyed by run|security
}

// NewModelStore creates a new in-memory model store.
func NewModelStore() *ModelStore {
	return &ModelStore{data: make(map[string]*domain.ModelRecord)}
}

// Compile-time interface check.
var _ storage.ModelStore = (*ModelStore)(nil)

func modelKey(runID, security string) string {
	return fmt.Sprintf("%s|%s", runID, security)
}

// Insert adds an accepted model. Returns ErrDuplicateKey if
// (run_id, security) exists.
func (s *ModelStore) Insert(_ context.Context, rec *domain.ModelRecord) error {
	if rec == nil || rec.RunID == "" || rec.Security == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := modelKey(rec.RunID, rec.Security)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *rec
	recCopy.Factors = append([]string(nil), rec.Factors...)
	s.data[key] = &recCopy
	return nil
}

// GetByRun retrieves all accepted models of a run, ordered by security.
func (s *ModelStore) GetByRun(_ context.Context, runID string) ([]*domain.ModelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ModelRecord
	for _, rec := range s.data {
		if rec.RunID == runID {
			recCopy := *rec
			recCopy.Factors = append([]string(nil), rec.Factors...)
			out = append(out, &recCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Security < out[j].Security })
	return out, nil
}

// GetBySecurity retrieves one security's accepted model for a run.
func (s *ModelStore) GetBySecurity(_ context.Context, runID, security string) (*domain.ModelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[modelKey(runID, security)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	recCopy := *rec
	recCopy.Factors = append([]string(nil), rec.Factors...)
	return &recCopy, nil
}

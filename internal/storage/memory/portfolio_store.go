package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// PortfolioStore is an in-memory implementation of storage.PortfolioStore.
type PortfolioStore struct {
	mu   sync.RWMutex
	data map[string]domain.PortfolioMembership // keyed by run|factor|security
}

// NewPortfolioStore creates a new in-memory portfolio store.
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{data: make(map[string]domain.PortfolioMembership)}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

func membershipKey(m domain.PortfolioMembership) string {
	return fmt.Sprintf("%s|%s|%s", m.RunID, m.Factor, m.Security)
}

// InsertBulk adds membership rows. Fails the entire batch on a duplicate,
// existing or intra-batch.
func (s *PortfolioStore) InsertBulk(_ context.Context, rows []domain.PortfolioMembership) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(rows))
	for _, m := range rows {
		if m.RunID == "" || m.Factor == "" || m.Security == "" {
			return storage.ErrInvalidInput
		}
		key := membershipKey(m)
		if _, exists := batch[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		batch[key] = struct{}{}
	}

	for _, m := range rows {
		s.data[membershipKey(m)] = m
	}
	return nil
}

// GetByRun retrieves a run's memberships, ordered by factor then security.
func (s *PortfolioStore) GetByRun(_ context.Context, runID string) ([]domain.PortfolioMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.PortfolioMembership
	for _, m := range s.data {
		if m.RunID == runID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Factor != out[j].Factor {
			return out[i].Factor < out[j].Factor
		}
		return out[i].Security < out[j].Security
	})
	return out, nil
}

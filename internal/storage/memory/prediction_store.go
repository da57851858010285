package memory

import (
	"context"
	"fmt"
	"sync"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// PredictionStore is an in-memory implementation of storage.PredictionStore.
type PredictionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PredictionArtifact // keyed by run|security|kind
}

// NewPredictionStore creates a new in-memory prediction store.
func NewPredictionStore() *PredictionStore {
	return &PredictionStore{data: make(map[string]*domain.PredictionArtifact)}
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

func artifactKey(runID, security, kind string) string {
	return fmt.Sprintf("%s|%s|%s", runID, security, kind)
}

// InsertArtifact stores an artifact's rows under a run.
func (s *PredictionStore) InsertArtifact(_ context.Context, runID string, artifact *domain.PredictionArtifact) error {
	if runID == "" || artifact == nil || artifact.Security == "" || artifact.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := artifactKey(runID, artifact.Security, artifact.Kind)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = copyArtifact(artifact)
	return nil
}

// GetArtifact retrieves one artifact by run, security and model kind.
func (s *PredictionStore) GetArtifact(_ context.Context, runID, security, kind string) (*domain.PredictionArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.data[artifactKey(runID, security, kind)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyArtifact(artifact), nil
}

func copyArtifact(a *domain.PredictionArtifact) *domain.PredictionArtifact {
	out := &domain.PredictionArtifact{
		Security: a.Security,
		Kind:     a.Kind,
		Rows:     make([]domain.PredictionRow, len(a.Rows)),
	}
	copy(out.Rows, a.Rows)
	return out
}

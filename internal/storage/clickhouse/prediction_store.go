package clickhouse

import (
	"context"
	"fmt"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// PredictionStore implements storage.PredictionStore using ClickHouse.
type PredictionStore struct {
	conn *Conn
}

// NewPredictionStore creates a new PredictionStore.
func NewPredictionStore(conn *Conn) *PredictionStore {
	return &PredictionStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

// InsertArtifact stores an artifact's rows under a run. Duplicate
// (run_id, security, kind) is checked explicitly before the batch.
func (s *PredictionStore) InsertArtifact(ctx context.Context, runID string, artifact *domain.PredictionArtifact) error {
	if runID == "" || artifact == nil || artifact.Security == "" || artifact.Kind == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, runID, artifact.Security, artifact.Kind)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO prediction_rows (run_id, security, kind, date, predicted, actual, squared_error)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, row := range artifact.Rows {
		err := batch.Append(
			runID, artifact.Security, artifact.Kind,
			row.Date.UTC(), row.Predicted, row.Actual, row.SquaredError,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetArtifact retrieves one artifact by run, security and model kind.
func (s *PredictionStore) GetArtifact(ctx context.Context, runID, security, kind string) (*domain.PredictionArtifact, error) {
	query := `
		SELECT date, predicted, actual, squared_error
		FROM prediction_rows
		WHERE run_id = ? AND security = ? AND kind = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, security, kind)
	if err != nil {
		return nil, fmt.Errorf("query artifact: %w", err)
	}
	defer rows.Close()

	artifact := &domain.PredictionArtifact{Security: security, Kind: kind}
	for rows.Next() {
		var r domain.PredictionRow
		if err := rows.Scan(&r.Date, &r.Predicted, &r.Actual, &r.SquaredError); err != nil {
			return nil, fmt.Errorf("scan prediction row: %w", err)
		}
		r.Date = r.Date.UTC()
		artifact.Rows = append(artifact.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prediction rows: %w", err)
	}
	if len(artifact.Rows) == 0 {
		return nil, storage.ErrNotFound
	}
	return artifact, nil
}

// exists checks if any rows are stored for the artifact key.
func (s *PredictionStore) exists(ctx context.Context, runID, security, kind string) (bool, error) {
	query := `
		SELECT count(*) FROM prediction_rows
		WHERE run_id = ? AND security = ? AND kind = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID, security, kind).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

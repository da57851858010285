package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// ModelStore implements storage.ModelStore using PostgreSQL.
type ModelStore struct {
	pool *Pool
}

// NewModelStore creates a new ModelStore.
func NewModelStore(pool *Pool) *ModelStore {
	return &ModelStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ModelStore = (*ModelStore)(nil)

// Insert adds an accepted model. Returns ErrDuplicateKey if
// (run_id, security) exists.
func (s *ModelStore) Insert(ctx context.Context, rec *domain.ModelRecord) error {
	if rec == nil || rec.RunID == "" || rec.Security == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO model_records (
			run_id, security, factors, adj_r2, mse, mse_regularized, accepted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.RunID, rec.Security, rec.Factors,
		rec.AdjR2, rec.MSE, rec.MSERegular, rec.AcceptedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert model record: %w", err)
	}
	return nil
}

// GetByRun retrieves all accepted models of a run, ordered by security.
func (s *ModelStore) GetByRun(ctx context.Context, runID string) ([]*domain.ModelRecord, error) {
	query := `
		SELECT run_id, security, factors, adj_r2, mse, mse_regularized, accepted_at
		FROM model_records
		WHERE run_id = $1
		ORDER BY security ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query models by run: %w", err)
	}
	defer rows.Close()

	return scanModelRecords(rows)
}

// GetBySecurity retrieves one security's accepted model for a run.
func (s *ModelStore) GetBySecurity(ctx context.Context, runID, security string) (*domain.ModelRecord, error) {
	query := `
		SELECT run_id, security, factors, adj_r2, mse, mse_regularized, accepted_at
		FROM model_records
		WHERE run_id = $1 AND security = $2
	`

	var rec domain.ModelRecord
	err := s.pool.QueryRow(ctx, query, runID, security).Scan(
		&rec.RunID, &rec.Security, &rec.Factors,
		&rec.AdjR2, &rec.MSE, &rec.MSERegular, &rec.AcceptedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query model by security: %w", err)
	}
	return &rec, nil
}

func scanModelRecords(rows pgx.Rows) ([]*domain.ModelRecord, error) {
	var out []*domain.ModelRecord
	for rows.Next() {
		var rec domain.ModelRecord
		err := rows.Scan(
			&rec.RunID, &rec.Security, &rec.Factors,
			&rec.AdjR2, &rec.MSE, &rec.MSERegular, &rec.AcceptedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan model record: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model records: %w", err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// PortfolioStore implements storage.PortfolioStore using PostgreSQL.
type PortfolioStore struct {
	pool *Pool
}

// NewPortfolioStore creates a new PortfolioStore.
func NewPortfolioStore(pool *Pool) *PortfolioStore {
	return &PortfolioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

// InsertBulk adds membership rows atomically. Fails the entire batch on any
// duplicate.
func (s *PortfolioStore) InsertBulk(ctx context.Context, rows []domain.PortfolioMembership) error {
	if len(rows) == 0 {
		return nil
	}
	for _, m := range rows {
		if m.RunID == "" || m.Factor == "" || m.Security == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO portfolio_memberships (run_id, factor, security)
		VALUES ($1, $2, $3)
	`
	for _, m := range rows {
		if _, err := tx.Exec(ctx, query, m.RunID, m.Factor, m.Security); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert membership: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRun retrieves a run's memberships, ordered by factor then security.
func (s *PortfolioStore) GetByRun(ctx context.Context, runID string) ([]domain.PortfolioMembership, error) {
	query := `
		SELECT run_id, factor, security
		FROM portfolio_memberships
		WHERE run_id = $1
		ORDER BY factor ASC, security ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var out []domain.PortfolioMembership
	for rows.Next() {
		var m domain.PortfolioMembership
		if err := rows.Scan(&m.RunID, &m.Factor, &m.Security); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}

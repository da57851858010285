package storage

import (
	"context"
	"time"

	"factor-screen/internal/domain"
)

// ClosePriceStore provides access to close_prices storage.
type ClosePriceStore interface {
	// InsertBulk adds multiple prices. Fails the entire batch on a
	// duplicate (symbol, date).
	InsertBulk(ctx context.Context, prices []domain.ClosePrice) error

	// GetBySymbol retrieves all prices for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]domain.ClosePrice, error)

	// GetByDateRange retrieves prices for a symbol within [start, end]
	// (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]domain.ClosePrice, error)

	// Symbols lists the distinct stored symbols, sorted.
	Symbols(ctx context.Context) ([]string, error)
}

// ModelStore provides access to accepted model records.
type ModelStore interface {
	// Insert adds an accepted model. Returns ErrDuplicateKey if
	// (run_id, security) exists.
	Insert(ctx context.Context, rec *domain.ModelRecord) error

	// GetByRun retrieves all accepted models of a run, ordered by security.
	GetByRun(ctx context.Context, runID string) ([]*domain.ModelRecord, error)

	// GetBySecurity retrieves one security's accepted model for a run.
	// Returns ErrNotFound if not exists.
	GetBySecurity(ctx context.Context, runID, security string) (*domain.ModelRecord, error)
}

// PortfolioStore provides access to portfolio membership rows.
type PortfolioStore interface {
	// InsertBulk adds membership rows. Fails the entire batch on a
	// duplicate (run_id, factor, security).
	InsertBulk(ctx context.Context, rows []domain.PortfolioMembership) error

	// GetByRun retrieves a run's memberships, ordered by factor then
	// security.
	GetByRun(ctx context.Context, runID string) ([]domain.PortfolioMembership, error)
}

// PredictionStore provides access to prediction artifact rows.
type PredictionStore interface {
	// InsertArtifact stores an artifact's rows under a run. Fails on a
	// duplicate (run_id, security, kind).
	InsertArtifact(ctx context.Context, runID string, artifact *domain.PredictionArtifact) error

	// GetArtifact retrieves one artifact by run, security and model kind,
	// rows ordered by date ASC. Returns ErrNotFound if not exists.
	GetArtifact(ctx context.Context, runID, security, kind string) (*domain.PredictionArtifact, error)
}

package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// ClosePriceStore implements storage.ClosePriceStore using ClickHouse.
type ClosePriceStore struct {
	conn *Conn
}

// NewClosePriceStore creates a new ClosePriceStore.
func NewClosePriceStore(conn *Conn) *ClosePriceStore {
	return &ClosePriceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ClosePriceStore = (*ClosePriceStore)(nil)

// InsertBulk adds multiple prices. Fails the entire batch on a duplicate
// (symbol, date). MergeTree does not enforce uniqueness, so duplicates are
// checked explicitly before the batch is sent.
func (s *ClosePriceStore) InsertBulk(ctx context.Context, prices []domain.ClosePrice) error {
	if len(prices) == 0 {
		return nil
	}

	type key struct {
		symbol string
		date   string
	}
	seen := make(map[key]struct{}, len(prices))
	for _, p := range prices {
		if p.Symbol == "" || p.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{p.Symbol, domain.DateKey(p.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range prices {
		exists, err := s.exists(ctx, p.Symbol, p.Date)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO close_prices (symbol, date, close)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range prices {
		if err := batch.Append(p.Symbol, p.Date.UTC(), p.Close); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves all prices for a symbol, ordered by date ASC.
func (s *ClosePriceStore) GetBySymbol(ctx context.Context, symbol string) ([]domain.ClosePrice, error) {
	query := `
		SELECT symbol, date, close
		FROM close_prices
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanClosePrices(rows)
}

// GetByDateRange retrieves prices for a symbol within [start, end].
func (s *ClosePriceStore) GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]domain.ClosePrice, error) {
	query := `
		SELECT symbol, date, close
		FROM close_prices
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanClosePrices(rows)
}

// Symbols lists the distinct stored symbols, sorted.
func (s *ClosePriceStore) Symbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT symbol
		FROM close_prices
		ORDER BY symbol ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return out, nil
}

// exists checks if a price with the given key exists.
func (s *ClosePriceStore) exists(ctx context.Context, symbol string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM close_prices
		WHERE symbol = ? AND date = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, symbol, date.UTC()).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanClosePrices(rows driver.Rows) ([]domain.ClosePrice, error) {
	var out []domain.ClosePrice
	for rows.Next() {
		var p domain.ClosePrice
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("scan close price: %w", err)
		}
		p.Date = p.Date.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate close prices: %w", err)
	}
	return out, nil
}

// Package memory implements the storage interfaces with in-process maps.
// The default backend for runs without a database and for tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

// ClosePriceStore is an in-memory implementation of storage.ClosePriceStore.
type ClosePriceStore struct {
	mu   sync.RWMutex
	data map[string]map[string]domain.ClosePrice // symbol -> date key -> price
}

// NewClosePriceStore creates a new in-memory close price store.
func NewClosePriceStore() *ClosePriceStore {
	return &ClosePriceStore{data: make(map[string]map[string]domain.ClosePrice)}
}

// Compile-time interface check.
var _ storage.ClosePriceStore = (*ClosePriceStore)(nil)

// InsertBulk adds multiple prices. Fails the entire batch on a duplicate
// (symbol, date), existing or intra-batch.
func (s *ClosePriceStore) InsertBulk(_ context.Context, prices []domain.ClosePrice) error {
	if len(prices) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct{ symbol, date string }
	batch := make(map[key]struct{}, len(prices))
	for _, p := range prices {
		if p.Symbol == "" || p.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{p.Symbol, domain.DateKey(p.Date)}
		if _, exists := batch[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[p.Symbol][domain.DateKey(p.Date)]; exists {
			return storage.ErrDuplicateKey
		}
		batch[k] = struct{}{}
	}

	for _, p := range prices {
		bySymbol, ok := s.data[p.Symbol]
		if !ok {
			bySymbol = make(map[string]domain.ClosePrice)
			s.data[p.Symbol] = bySymbol
		}
		bySymbol[domain.DateKey(p.Date)] = p
	}
	return nil
}

// GetBySymbol retrieves all prices for a symbol, ordered by date ASC.
func (s *ClosePriceStore) GetBySymbol(_ context.Context, symbol string) ([]domain.ClosePrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ClosePrice, 0, len(s.data[symbol]))
	for _, p := range s.data[symbol] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// GetByDateRange retrieves prices for a symbol within [start, end].
func (s *ClosePriceStore) GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]domain.ClosePrice, error) {
	all, err := s.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ClosePrice, 0, len(all))
	for _, p := range all {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Symbols lists the distinct stored symbols, sorted.
func (s *ClosePriceStore) Symbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for sym := range s.data {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

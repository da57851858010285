package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"factor-screen/internal/domain"
	"factor-screen/internal/storage"
)

func testRecord(runID, security string) *domain.ModelRecord {
	return &domain.ModelRecord{
		RunID:      runID,
		Security:   security,
		Factors:    []string{"oil", "rates"},
		AdjR2:      0.82,
		MSE:        0.0004,
		MSERegular: 0.0005,
		AcceptedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestModelStore_InsertAndGet(t *testing.T) {
	store := NewModelStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testRecord("run-1", "XOM")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetBySecurity(ctx, "run-1", "XOM")
	if err != nil {
		t.Fatalf("GetBySecurity failed: %v", err)
	}
	if got.AdjR2 != 0.82 || len(got.Factors) != 2 {
		t.Errorf("Unexpected record %+v", got)
	}
}

func TestModelStore_DuplicateRejected(t *testing.T) {
	store := NewModelStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testRecord("run-1", "XOM")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := store.Insert(ctx, testRecord("run-1", "XOM"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same security under a different run is fine.
	if err := store.Insert(ctx, testRecord("run-2", "XOM")); err != nil {
		t.Fatalf("Insert into second run failed: %v", err)
	}
}

func TestModelStore_GetByRunOrdered(t *testing.T) {
	store := NewModelStore()
	ctx := context.Background()

	for _, sec := range []string{"XOM", "AAPL", "MSFT"} {
		if err := store.Insert(ctx, testRecord("run-1", sec)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := store.Insert(ctx, testRecord("run-2", "CVX")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRun failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(got))
	}
	if got[0].Security != "AAPL" || got[1].Security != "MSFT" || got[2].Security != "XOM" {
		t.Errorf("Expected records ordered by security, got %v", got)
	}
}

func TestModelStore_NotFound(t *testing.T) {
	store := NewModelStore()
	_, err := store.GetBySecurity(context.Background(), "run-x", "NONE")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestModelStore_InsertCopiesFactors(t *testing.T) {
	store := NewModelStore()
	ctx := context.Background()

	rec := testRecord("run-1", "XOM")
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	rec.Factors[0] = "mutated"

	got, err := store.GetBySecurity(ctx, "run-1", "XOM")
	if err != nil {
		t.Fatalf("GetBySecurity failed: %v", err)
	}
	if got.Factors[0] != "oil" {
		t.Errorf("Stored record shares state with the caller: %v", got.Factors)
	}
}

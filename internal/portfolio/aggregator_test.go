package portfolio

import (
	"reflect"
	"sync"
	"testing"
)

func TestMapping_RecordIsIdempotent(t *testing.T) {
	m := NewMapping()
	m.Record("oil", "XOM")
	m.Record("oil", "XOM")
	m.Record("oil", "CVX")

	securities := m.Securities("oil")
	if !reflect.DeepEqual(securities, []string{"CVX", "XOM"}) {
		t.Errorf("Expected [CVX XOM], got %v", securities)
	}
}

func TestMapping_AccessorsSorted(t *testing.T) {
	m := NewMapping()
	m.Record("rates", "JPM")
	m.Record("gold", "NEM")
	m.Record("oil", "XOM")

	if !reflect.DeepEqual(m.Factors(), []string{"gold", "oil", "rates"}) {
		t.Errorf("Expected sorted factors, got %v", m.Factors())
	}
	if m.Len() != 3 {
		t.Errorf("Expected 3 factors, got %d", m.Len())
	}

	summary := m.Summarize()
	if !reflect.DeepEqual(summary["oil"], []string{"XOM"}) {
		t.Errorf("Unexpected summary for oil: %v", summary["oil"])
	}
}

func TestMapping_Memberships(t *testing.T) {
	m := NewMapping()
	m.Record("oil", "XOM")
	m.Record("oil", "CVX")
	m.Record("gold", "NEM")

	rows := m.Memberships("run-1")
	if len(rows) != 3 {
		t.Fatalf("Expected 3 membership rows, got %d", len(rows))
	}
	// Sorted by factor, then security.
	if rows[0].Factor != "gold" || rows[0].Security != "NEM" {
		t.Errorf("Unexpected first row %+v", rows[0])
	}
	if rows[1].Security != "CVX" || rows[2].Security != "XOM" {
		t.Errorf("Unexpected ordering: %+v", rows)
	}
	for _, r := range rows {
		if r.RunID != "run-1" {
			t.Errorf("Expected run-1, got %s", r.RunID)
		}
	}
}

func TestMapping_ConcurrentRecord(t *testing.T) {
	m := NewMapping()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Record("oil", "XOM")
			}
		}()
	}
	wg.Wait()

	if got := m.Securities("oil"); len(got) != 1 {
		t.Errorf("Expected a single security, got %v", got)
	}
}

func TestMapping_EmptyFactorHasNoSecurities(t *testing.T) {
	m := NewMapping()
	if got := m.Securities("missing"); len(got) != 0 {
		t.Errorf("Expected empty slice, got %v", got)
	}
	if m.Len() != 0 {
		t.Errorf("Expected empty mapping, got %d", m.Len())
	}
}

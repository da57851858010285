package screening

import (
	"sort"
	"testing"
	"time"

	"factor-screen/internal/domain"
	"factor-screen/internal/returns"
)

func seriesOn(values map[int]float64) []domain.ReturnPoint {
	var idx []int
	for i := range values {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]domain.ReturnPoint, len(idx))
	for n, i := range idx {
		out[n] = domain.ReturnPoint{Date: day(i), Value: values[i]}
	}
	return out
}

func factorTable(t *testing.T, name string, values map[int]float64) *domain.ReturnTable {
	t.Helper()
	series := seriesOn(values)
	table, err := returns.TableFromSeries(name, series)
	if err != nil {
		t.Fatalf("TableFromSeries failed: %v", err)
	}
	return table
}

func TestPrepareInputs_IntersectsCalendars(t *testing.T) {
	sec1 := domain.SecurityReturns{ID: "SEC1", Series: seriesOn(map[int]float64{1: 0.1, 2: 0.2, 3: 0.3, 4: 0.4})}
	// Factor data misses day 3 and carries days outside the anchor.
	factors := factorTable(t, "f1", map[int]float64{0: 9, 1: 1, 2: 2, 4: 4, 5: 9})

	aligned, alignedFactors, skipped, err := PrepareInputs([]domain.SecurityReturns{sec1}, factors)
	if err != nil {
		t.Fatalf("PrepareInputs failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("Expected nothing skipped, got %v", skipped)
	}
	if alignedFactors.Rows() != 3 {
		t.Fatalf("Expected index [1 2 4] of 3 rows, got %d", alignedFactors.Rows())
	}
	wantDates := []time.Time{day(1), day(2), day(4)}
	for i, d := range alignedFactors.Dates() {
		if !d.Equal(wantDates[i]) {
			t.Errorf("Index position %d: got %v, want %v", i, d, wantDates[i])
		}
	}
	if len(aligned) != 1 || len(aligned[0].Series) != 3 {
		t.Fatalf("Expected SEC1 projected onto 3 rows, got %+v", aligned)
	}
	if aligned[0].Series[2].Value != 0.4 {
		t.Errorf("Expected day-4 value 0.4, got %v", aligned[0].Series[2].Value)
	}
	// The anchor security's own column must not leak into the factors.
	if alignedFactors.HasColumn("SEC1") {
		t.Error("Anchor column leaked into the factor table")
	}
}

func TestPrepareInputs_SkipsIncompleteSecurity(t *testing.T) {
	sec1 := domain.SecurityReturns{ID: "SEC1", Series: seriesOn(map[int]float64{1: 0.1, 2: 0.2, 3: 0.3})}
	sec2 := domain.SecurityReturns{ID: "SEC2", Series: seriesOn(map[int]float64{1: 0.5, 2: 0.6})} // missing day 3
	factors := factorTable(t, "f1", map[int]float64{1: 1, 2: 2, 3: 3})

	aligned, _, skipped, err := PrepareInputs([]domain.SecurityReturns{sec1, sec2}, factors)
	if err != nil {
		t.Fatalf("PrepareInputs failed: %v", err)
	}
	if len(aligned) != 1 || aligned[0].ID != "SEC1" {
		t.Fatalf("Expected only SEC1 aligned, got %+v", aligned)
	}
	if len(skipped) != 1 || skipped[0] != "SEC2" {
		t.Errorf("Expected SEC2 skipped, got %v", skipped)
	}
}

func TestPrepareInputs_ResolvesAnchorNameCollision(t *testing.T) {
	// The anchor security shares its name with a factor; the join suffixes
	// both and only the anchor side is dropped.
	sec := domain.SecurityReturns{ID: "SPX", Series: seriesOn(map[int]float64{1: 0.1, 2: 0.2})}
	factors := factorTable(t, "SPX", map[int]float64{1: 1, 2: 2})

	_, alignedFactors, _, err := PrepareInputs([]domain.SecurityReturns{sec}, factors)
	if err != nil {
		t.Fatalf("PrepareInputs failed: %v", err)
	}
	if !alignedFactors.HasColumn("SPX" + returns.RightSuffix) {
		t.Errorf("Expected suffixed factor column, got %v", alignedFactors.Columns())
	}
	if alignedFactors.HasColumn("SPX" + returns.LeftSuffix) {
		t.Error("Anchor column survived the drop")
	}
}

func TestPrepareInputs_FailsOnDisjointCalendars(t *testing.T) {
	sec := domain.SecurityReturns{ID: "SEC1", Series: seriesOn(map[int]float64{1: 0.1, 2: 0.2})}
	factors := factorTable(t, "f1", map[int]float64{10: 1, 11: 2})

	if _, _, _, err := PrepareInputs([]domain.SecurityReturns{sec}, factors); err == nil {
		t.Fatal("Expected error for disjoint calendars")
	}
}

func TestPrepareInputs_FailsOnEmptyInput(t *testing.T) {
	factors := factorTable(t, "f1", map[int]float64{1: 1})
	if _, _, _, err := PrepareInputs(nil, factors); err == nil {
		t.Fatal("Expected error for empty security list")
	}
}

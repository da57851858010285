package returns

import (
	"fmt"
	"time"

	"factor-screen/internal/domain"
)

// Suffixes used to disambiguate column name collisions during a join. The
// base table keeps LeftSuffix, the attached table gets RightSuffix.
const (
	LeftSuffix  = "_left"
	RightSuffix = "_right"
)

// Align left-joins the attached table onto the base table's calendar. The
// result's date index equals the base index exactly: base dates missing
// from attach produce absent cells (not zero, not interpolated), and
// attach-only dates are dropped. Colliding column names are suffixed
// deterministically instead of overwritten.
func Align(base, attach *domain.ReturnTable) (*domain.ReturnTable, error) {
	out, err := domain.NewReturnTable(base.Dates())
	if err != nil {
		return nil, err
	}

	collides := func(name string) bool {
		return base.HasColumn(name) && attach.HasColumn(name)
	}

	for _, name := range base.Columns() {
		cells, err := base.Column(name)
		if err != nil {
			return nil, err
		}
		outName := name
		if collides(name) {
			outName = name + LeftSuffix
		}
		if err := out.AddColumn(outName, cells); err != nil {
			return nil, fmt.Errorf("attach base column: %w", err)
		}
	}

	// Index the attached table's rows by date key for the left join.
	attachIdx := make(map[string]int, attach.Rows())
	for i, d := range attach.Dates() {
		attachIdx[domain.DateKey(d)] = i
	}

	for _, name := range attach.Columns() {
		cells, err := attach.Column(name)
		if err != nil {
			return nil, err
		}
		joined := make([]domain.Cell, base.Rows())
		for i, d := range base.Dates() {
			if j, ok := attachIdx[domain.DateKey(d)]; ok {
				joined[i] = cells[j]
			}
			// Otherwise the zero Cell: absent, never zero-valued.
		}
		outName := name
		if collides(name) {
			outName = name + RightSuffix
		}
		if err := out.AddColumn(outName, joined); err != nil {
			return nil, fmt.Errorf("attach joined column: %w", err)
		}
	}

	return out, nil
}

// TableFromSeries builds a single-column table from an ordered return
// series, validating chronological order along the way.
func TableFromSeries(name string, series []domain.ReturnPoint) (*domain.ReturnTable, error) {
	dates := make([]time.Time, len(series))
	values := make([]float64, len(series))
	for i, p := range series {
		dates[i] = p.Date
		values[i] = p.Value
	}
	t, err := domain.NewReturnTable(dates)
	if err != nil {
		return nil, fmt.Errorf("series %q: %w", name, err)
	}
	if err := t.AddDenseColumn(name, values); err != nil {
		return nil, err
	}
	return t, nil
}

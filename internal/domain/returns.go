package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical layout for date keys across the module.
// All series are daily (or coarser); intraday precision is never kept.
const DateLayout = "2006-01-02"

// DateKey normalizes a timestamp into the canonical join key.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ReturnPoint is one observation of a return series: the simple percentage
// return over the period ending at Date.
type ReturnPoint struct {
	Date  time.Time
	Value float64
}

// SecurityReturns pairs a security identifier with its ordered return series.
// The screening loop iterates an explicit slice of these rather than table
// columns, so the algorithm is decoupled from any tabular container.
type SecurityReturns struct {
	ID     string
	Series []ReturnPoint
}

// Cell is a single table cell. Valid=false marks a date the attached series
// had no observation for after a left join. Absent is not zero.
type Cell struct {
	Value float64
	Valid bool
}

// ReturnTable maps column names to return series sharing one strictly
// increasing date index. Built by the alignment step; consumed by the
// splitter and the regression engine.
type ReturnTable struct {
	dates   []time.Time
	columns []string
	cells   map[string][]Cell
}

// NewReturnTable creates a table over the given date index.
// Dates must be strictly increasing.
func NewReturnTable(dates []time.Time) (*ReturnTable, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			return nil, fmt.Errorf("date index not strictly increasing at position %d (%s >= %s)",
				i, DateKey(dates[i-1]), DateKey(dates[i]))
		}
	}
	copied := make([]time.Time, len(dates))
	copy(copied, dates)
	return &ReturnTable{
		dates: copied,
		cells: make(map[string][]Cell),
	}, nil
}

// AddColumn attaches a column of cells. The column length must match the
// date index and the name must be unique.
func (t *ReturnTable) AddColumn(name string, cells []Cell) error {
	if _, exists := t.cells[name]; exists {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(cells) != len(t.dates) {
		return fmt.Errorf("column %q has %d cells, index has %d dates", name, len(cells), len(t.dates))
	}
	copied := make([]Cell, len(cells))
	copy(copied, cells)
	t.columns = append(t.columns, name)
	t.cells[name] = copied
	return nil
}

// AddDenseColumn attaches a column where every date has a value.
func (t *ReturnTable) AddDenseColumn(name string, values []float64) error {
	if len(values) != len(t.dates) {
		return fmt.Errorf("column %q has %d values, index has %d dates", name, len(values), len(t.dates))
	}
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Cell{Value: v, Valid: true}
	}
	return t.AddColumn(name, cells)
}

// Rows returns the number of dates in the shared index.
func (t *ReturnTable) Rows() int { return len(t.dates) }

// Dates returns a copy of the shared date index.
func (t *ReturnTable) Dates() []time.Time {
	copied := make([]time.Time, len(t.dates))
	copy(copied, t.dates)
	return copied
}

// DateAt returns the date at row i.
func (t *ReturnTable) DateAt(i int) time.Time { return t.dates[i] }

// Columns returns the column names in insertion order.
func (t *ReturnTable) Columns() []string {
	copied := make([]string, len(t.columns))
	copy(copied, t.columns)
	return copied
}

// HasColumn reports whether the named column exists.
func (t *ReturnTable) HasColumn(name string) bool {
	_, ok := t.cells[name]
	return ok
}

// Column returns the cells of the named column.
func (t *ReturnTable) Column(name string) ([]Cell, error) {
	cells, ok := t.cells[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	copied := make([]Cell, len(cells))
	copy(copied, cells)
	return copied, nil
}

// DenseColumn returns the values of a column that has no absent cells.
func (t *ReturnTable) DenseColumn(name string) ([]float64, error) {
	cells, ok := t.cells[name]
	if !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	values := make([]float64, len(cells))
	for i, c := range cells {
		if !c.Valid {
			return nil, fmt.Errorf("column %q has an absent cell at %s", name, DateKey(t.dates[i]))
		}
		values[i] = c.Value
	}
	return values, nil
}

// Select produces a new table restricted to the named columns, preserving
// the requested order. Used to prune the test slice to a model's surviving
// factors.
func (t *ReturnTable) Select(names []string) (*ReturnTable, error) {
	out, err := NewReturnTable(t.dates)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		cells, ok := t.cells[name]
		if !ok {
			return nil, fmt.Errorf("no column %q", name)
		}
		if err := out.AddColumn(name, cells); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Drop produces a new table without the named column. Column order of the
// remainder is preserved.
func (t *ReturnTable) Drop(name string) (*ReturnTable, error) {
	if _, ok := t.cells[name]; !ok {
		return nil, fmt.Errorf("no column %q", name)
	}
	keep := make([]string, 0, len(t.columns)-1)
	for _, c := range t.columns {
		if c != name {
			keep = append(keep, c)
		}
	}
	return t.Select(keep)
}

// DropAbsent produces a new table keeping only dates where every column has
// a value. Regression consumes dense tables; absence survives only up to
// this step.
func (t *ReturnTable) DropAbsent() (*ReturnTable, error) {
	var keep []int
	for i := range t.dates {
		complete := true
		for _, name := range t.columns {
			if !t.cells[name][i].Valid {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	dates := make([]time.Time, len(keep))
	for j, i := range keep {
		dates[j] = t.dates[i]
	}
	out, err := NewReturnTable(dates)
	if err != nil {
		return nil, err
	}
	for _, name := range t.columns {
		cells := make([]Cell, len(keep))
		for j, i := range keep {
			cells[j] = t.cells[name][i]
		}
		if err := out.AddColumn(name, cells); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Slice produces a new table over rows [from, to). Shares no state with the
// receiver.
func (t *ReturnTable) Slice(from, to int) (*ReturnTable, error) {
	if from < 0 || to > len(t.dates) || from > to {
		return nil, fmt.Errorf("slice [%d, %d) out of range for %d rows", from, to, len(t.dates))
	}
	out, err := NewReturnTable(t.dates[from:to])
	if err != nil {
		return nil, err
	}
	for _, name := range t.columns {
		if err := out.AddColumn(name, t.cells[name][from:to]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

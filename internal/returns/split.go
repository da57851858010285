package returns

import (
	"math"

	"factor-screen/internal/domain"
)

// SplitPoint returns the row position of the train/test boundary for a
// table of n rows: floor(ratio * n). The same position must be applied to
// the factor table and to every security series sharing its index, so the
// slices stay date-aligned.
func SplitPoint(rows int, ratio float64) int {
	return int(math.Floor(ratio * float64(rows)))
}

// Split partitions a table into a leading training slice and a trailing
// test slice at floor(ratio * rows). Train rows are strictly earlier than
// test rows and train++test reconstructs the input row-for-row. Ratio
// validity is a run-start concern (domain.RunConfig.Validate); Split
// assumes it holds.
func Split(t *domain.ReturnTable, ratio float64) (train, test *domain.ReturnTable, err error) {
	at := SplitPoint(t.Rows(), ratio)
	train, err = t.Slice(0, at)
	if err != nil {
		return nil, nil, err
	}
	test, err = t.Slice(at, t.Rows())
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// SplitSeries partitions an ordered return series at the same boundary
// position Split uses for tables of equal length.
func SplitSeries(series []domain.ReturnPoint, ratio float64) (train, test []domain.ReturnPoint) {
	at := SplitPoint(len(series), ratio)
	return series[:at], series[at:]
}

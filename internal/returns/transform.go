// Package returns prepares aligned return tables for the screening engine:
// level-to-return transformation, calendar alignment and the train/test
// split.
package returns

import (
	"time"

	"factor-screen/internal/domain"
)

// LevelPoint is one observation of a price or index level series.
type LevelPoint struct {
	Date  time.Time
	Level float64
}

// FromLevels converts a chronologically ordered level series into simple
// one-period returns, ascribing each return to the period just completed.
// The edge rows that cannot be computed are dropped. Fewer than two
// observations yields an empty series, never an error: emptiness propagates
// downstream instead.
func FromLevels(levels []LevelPoint) []domain.ReturnPoint {
	if len(levels) < 2 {
		return nil
	}
	out := make([]domain.ReturnPoint, 0, len(levels)-1)
	for i := 1; i < len(levels); i++ {
		out = append(out, domain.ReturnPoint{
			Date:  levels[i].Date,
			Value: levels[i].Level/levels[i-1].Level - 1,
		})
	}
	return out
}

// FromClosePrices is FromLevels over stored close prices. Prices must be
// ordered by date ascending, as every store retrieval guarantees.
func FromClosePrices(prices []domain.ClosePrice) []domain.ReturnPoint {
	levels := make([]LevelPoint, len(prices))
	for i, p := range prices {
		levels[i] = LevelPoint{Date: p.Date, Level: p.Close}
	}
	return FromLevels(levels)
}

package screening

import (
	"fmt"

	"factor-screen/internal/domain"
	"factor-screen/internal/returns"
)

// PrepareInputs normalizes raw per-security return series and a factor
// table onto one shared date index, the boundary step between data
// retrieval and the core. The calendar of the first security anchors the
// index (differing instrument calendars are normalized onto it); factor
// dates outside it are dropped and index dates without factor data are
// removed via DropAbsent. A security missing any remaining index date is
// returned in skipped rather than reaching the core.
func PrepareInputs(rawSecurities []domain.SecurityReturns, factors *domain.ReturnTable) (aligned []domain.SecurityReturns, alignedFactors *domain.ReturnTable, skipped []string, err error) {
	if len(rawSecurities) == 0 {
		return nil, nil, nil, fmt.Errorf("no securities to prepare")
	}

	anchor, err := returns.TableFromSeries(rawSecurities[0].ID, rawSecurities[0].Series)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("anchor security %s: %w", rawSecurities[0].ID, err)
	}
	joined, err := returns.Align(anchor, factors)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("align factors: %w", err)
	}
	joined, err = joined.Drop(anchorColumn(rawSecurities[0].ID, factors))
	if err != nil {
		return nil, nil, nil, err
	}
	alignedFactors, err = joined.DropAbsent()
	if err != nil {
		return nil, nil, nil, err
	}
	if alignedFactors.Rows() == 0 {
		return nil, nil, nil, fmt.Errorf("no dates shared between securities and factors")
	}

	index := alignedFactors.Dates()
	for _, sec := range rawSecurities {
		byDate := make(map[string]float64, len(sec.Series))
		for _, p := range sec.Series {
			byDate[domain.DateKey(p.Date)] = p.Value
		}

		series := make([]domain.ReturnPoint, 0, len(index))
		complete := true
		for _, d := range index {
			v, ok := byDate[domain.DateKey(d)]
			if !ok {
				complete = false
				break
			}
			series = append(series, domain.ReturnPoint{Date: d, Value: v})
		}
		if !complete {
			skipped = append(skipped, sec.ID)
			continue
		}
		aligned = append(aligned, domain.SecurityReturns{ID: sec.ID, Series: series})
	}
	if len(aligned) == 0 {
		return nil, nil, nil, fmt.Errorf("every security was missing index dates")
	}
	return aligned, alignedFactors, skipped, nil
}

// anchorColumn resolves the anchor's column name inside the joined table,
// accounting for the suffixing rule when a factor shares its name.
func anchorColumn(id string, factors *domain.ReturnTable) string {
	if factors.HasColumn(id) {
		return id + returns.LeftSuffix
	}
	return id
}

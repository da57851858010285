package regression

import (
	"fmt"

	"factor-screen/internal/domain"
)

// Selector runs backward elimination for one security at a time on its
// training slice.
type Selector struct {
	// SignifLevel is the p-value cutoff above which a factor is dropped.
	SignifLevel float64
}

// NewSelector creates a selector with the given significance cutoff.
func NewSelector(signifLevel float64) *Selector {
	return &Selector{SignifLevel: signifLevel}
}

// Outcome is the terminal state of one selection loop.
type Outcome struct {
	// Converged is true when a fit was reached where every non-constant
	// p-value clears the cutoff. False means the candidate set was
	// exhausted before convergence.
	Converged bool
	// Model is the final fitted model; nil unless Converged.
	Model *domain.FittedModel
	// Rounds counts the fits performed. At most |factors|+1: every
	// non-terminal round removes at least one factor.
	Rounds int
}

// Select fits OLS of the security's training returns on the candidate
// factors, drops every factor whose p-value exceeds the cutoff, and refits
// until all survivors are significant. The constant column is added if
// missing and is never eliminated, whatever its p-value. An empty factor
// set, at entry or after eliminations, ends the loop without a model and
// without an error; a singular fit returns ErrDegenerateFit.
//
// Eliminating all offenders of a round at once keeps the loop
// deterministic; the surviving set is the same whatever the order the
// offenders fall in, because elimination continues until none fail.
func (s *Selector) Select(securityID string, trainY []float64, factors *domain.ReturnTable) (*Outcome, error) {
	if nonConstCount(factors) == 0 {
		// Immediate exhaustion: nothing to select from.
		return &Outcome{}, nil
	}

	candidates, err := AddConstant(factors)
	if err != nil {
		return nil, fmt.Errorf("add constant: %w", err)
	}

	out := &Outcome{}
	for {
		model, err := Fit(securityID, trainY, candidates)
		if err != nil {
			return nil, err
		}
		out.Rounds++

		var failing []string
		for _, name := range model.Names {
			if name == domain.ConstColumn {
				continue
			}
			if model.PValues[name] > s.SignifLevel {
				failing = append(failing, name)
			}
		}

		if len(failing) == 0 {
			out.Converged = true
			out.Model = model
			return out, nil
		}

		for _, name := range failing {
			candidates, err = candidates.Drop(name)
			if err != nil {
				return nil, err
			}
		}
	}
}

func nonConstCount(t *domain.ReturnTable) int {
	count := 0
	for _, name := range t.Columns() {
		if name != domain.ConstColumn {
			count++
		}
	}
	return count
}

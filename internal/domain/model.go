package domain

import "time"

// ConstColumn is the name of the intercept column the selector prepends to
// the factor table. It is never eligible for elimination.
const ConstColumn = "const"

// Model kinds for prediction artifacts.
const (
	ModelKindPlain       = "plain"
	ModelKindRegularized = "regularized"
)

// FittedModel is the immutable result of one regression fit: coefficients,
// per-factor p-values and fit quality for one security on its training
// slice. Each selector round produces a fresh model; none is ever mutated.
type FittedModel struct {
	Security string

	// Names holds the fitted columns in the exact order used for the
	// design matrix, ConstColumn first. Prediction must reuse this order.
	Names        []string
	Coefficients map[string]float64
	PValues      map[string]float64

	RSquared    float64
	AdjRSquared float64

	// Regularized marks an elastic-net refit; Alpha is its shrinkage
	// strength. Zero-value for plain OLS fits.
	Regularized bool
	Alpha       float64
}

// Factors returns the surviving factor names, excluding the constant, in
// design-matrix order.
func (m *FittedModel) Factors() []string {
	out := make([]string, 0, len(m.Names))
	for _, name := range m.Names {
		if name != ConstColumn {
			out = append(out, name)
		}
	}
	return out
}

// PredictionRow is one out-of-sample observation: the model's prediction
// joined to the actual return with its squared error.
type PredictionRow struct {
	Date         time.Time
	Predicted    float64
	Actual       float64
	SquaredError float64
}

// PredictionArtifact is the test-slice prediction table for one evaluated
// model. Read-only once produced; MSE is derived, not stored.
type PredictionArtifact struct {
	Security string
	Kind     string // ModelKindPlain or ModelKindRegularized
	Rows     []PredictionRow
}

// MSE returns sum(squared error) / row count, or 0 for an empty artifact.
func (a *PredictionArtifact) MSE() float64 {
	if len(a.Rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range a.Rows {
		sum += r.SquaredError
	}
	return sum / float64(len(a.Rows))
}

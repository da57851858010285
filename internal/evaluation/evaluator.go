// Package evaluation scores accepted models on the held-out test slice,
// plain and elastic-net-regularized.
package evaluation

import (
	"fmt"

	"factor-screen/internal/domain"
	"factor-screen/internal/regression"
)

// Predict computes one prediction per test date from the model's
// coefficients. The factor table is pruned to exactly the fitted columns,
// in training order, before the product.
func Predict(model *domain.FittedModel, testFactors *domain.ReturnTable) ([]domain.ReturnPoint, error) {
	pruned, err := testFactors.Select(model.Names)
	if err != nil {
		return nil, fmt.Errorf("prune test factors: %w", err)
	}

	cols := make([][]float64, len(model.Names))
	for j, name := range model.Names {
		col, err := pruned.DenseColumn(name)
		if err != nil {
			return nil, fmt.Errorf("test column: %w", err)
		}
		cols[j] = col
	}

	out := make([]domain.ReturnPoint, pruned.Rows())
	for i := 0; i < pruned.Rows(); i++ {
		var v float64
		for j, name := range model.Names {
			v += model.Coefficients[name] * cols[j][i]
		}
		out[i] = domain.ReturnPoint{Date: pruned.DateAt(i), Value: v}
	}
	return out, nil
}

// Evaluate predicts over the test slice and joins the predictions to the
// actual test returns on the prediction's date index. Actual rows without a
// prediction are dropped, so the artifact matches the prediction length; a
// predicted date with no actual is a mismatched index and aborts the run.
// The returned mse is sum(squared error) / rows.
func Evaluate(model *domain.FittedModel, testFactors *domain.ReturnTable, testActual []domain.ReturnPoint) (*domain.PredictionArtifact, float64, error) {
	predictions, err := Predict(model, testFactors)
	if err != nil {
		return nil, 0, err
	}

	actualByDate := make(map[string]float64, len(testActual))
	for _, p := range testActual {
		actualByDate[domain.DateKey(p.Date)] = p.Value
	}

	kind := domain.ModelKindPlain
	if model.Regularized {
		kind = domain.ModelKindRegularized
	}
	artifact := &domain.PredictionArtifact{
		Security: model.Security,
		Kind:     kind,
		Rows:     make([]domain.PredictionRow, 0, len(predictions)),
	}
	for _, p := range predictions {
		actual, ok := actualByDate[domain.DateKey(p.Date)]
		if !ok {
			return nil, 0, fmt.Errorf("no actual return for predicted date %s", domain.DateKey(p.Date))
		}
		diff := actual - p.Value
		artifact.Rows = append(artifact.Rows, domain.PredictionRow{
			Date:         p.Date,
			Predicted:    p.Value,
			Actual:       actual,
			SquaredError: diff * diff,
		})
	}
	return artifact, artifact.MSE(), nil
}

// EvaluateRegularized refits the same training data with an elastic-net
// penalty at the given shrinkage strength (L1 weight 0, pure ridge-style
// shrinkage) and runs the identical evaluation. The training table must
// already be pruned to the accepted model's surviving columns so the two
// MSEs stay comparable.
func EvaluateRegularized(securityID string, trainY []float64, trainFactors *domain.ReturnTable, alpha float64, testFactors *domain.ReturnTable, testActual []domain.ReturnPoint) (*domain.PredictionArtifact, float64, error) {
	model, err := regression.FitElasticNet(securityID, trainY, trainFactors, alpha, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("regularized refit: %w", err)
	}
	return Evaluate(model, testFactors, testActual)
}

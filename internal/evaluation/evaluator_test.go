package evaluation

import (
	"math"
	"testing"
	"time"

	"factor-screen/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func testTable(t *testing.T, rows int, columns map[string][]float64, order []string) *domain.ReturnTable {
	t.Helper()
	dates := make([]time.Time, rows)
	for i := range dates {
		dates[i] = day(i)
	}
	table, err := domain.NewReturnTable(dates)
	if err != nil {
		t.Fatalf("NewReturnTable failed: %v", err)
	}
	for _, name := range order {
		if err := table.AddDenseColumn(name, columns[name]); err != nil {
			t.Fatalf("AddDenseColumn failed: %v", err)
		}
	}
	return table
}

func linearModel() *domain.FittedModel {
	return &domain.FittedModel{
		Security:     "SEC",
		Names:        []string{domain.ConstColumn, "f1"},
		Coefficients: map[string]float64{domain.ConstColumn: 1, "f1": 2},
	}
}

func TestPredict_AppliesCoefficientsInTrainingOrder(t *testing.T) {
	table := testTable(t, 3, map[string][]float64{
		domain.ConstColumn: {1, 1, 1},
		"f1":               {0.1, 0.2, 0.3},
		"ignored":          {99, 99, 99},
	}, []string{domain.ConstColumn, "f1", "ignored"})

	predictions, err := Predict(linearModel(), table)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(predictions) != 3 {
		t.Fatalf("Expected 3 predictions, got %d", len(predictions))
	}
	want := []float64{1.2, 1.4, 1.6}
	for i, p := range predictions {
		if math.Abs(p.Value-want[i]) > 1e-12 {
			t.Errorf("Prediction %d: got %v, want %v", i, p.Value, want[i])
		}
		if !p.Date.Equal(day(i)) {
			t.Errorf("Prediction %d carries wrong date %v", i, p.Date)
		}
	}
}

func TestPredict_FailsOnMissingModelColumn(t *testing.T) {
	table := testTable(t, 2, map[string][]float64{
		domain.ConstColumn: {1, 1},
	}, []string{domain.ConstColumn})

	if _, err := Predict(linearModel(), table); err == nil {
		t.Fatal("Expected error when a fitted column is absent from the test table")
	}
}

func TestEvaluate_ComputesMSE(t *testing.T) {
	table := testTable(t, 2, map[string][]float64{
		domain.ConstColumn: {1, 1},
		"f1":               {0.1, 0.2},
	}, []string{domain.ConstColumn, "f1"})
	// Predictions are 1.2 and 1.4; actuals offset by +0.1 and -0.3.
	actuals := []domain.ReturnPoint{
		{Date: day(0), Value: 1.3},
		{Date: day(1), Value: 1.1},
	}

	artifact, mse, err := Evaluate(linearModel(), table, actuals)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if artifact.Kind != domain.ModelKindPlain {
		t.Errorf("Expected plain kind, got %s", artifact.Kind)
	}
	if len(artifact.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(artifact.Rows))
	}
	want := (0.1*0.1 + 0.3*0.3) / 2
	if math.Abs(mse-want) > 1e-12 {
		t.Errorf("Expected MSE %v, got %v", want, mse)
	}
	if math.Abs(artifact.MSE()-mse) > 1e-12 {
		t.Errorf("Artifact MSE %v disagrees with returned %v", artifact.MSE(), mse)
	}
}

func TestEvaluate_ExtraActualRowsAreDropped(t *testing.T) {
	table := testTable(t, 1, map[string][]float64{
		domain.ConstColumn: {1},
		"f1":               {0.1},
	}, []string{domain.ConstColumn, "f1"})
	actuals := []domain.ReturnPoint{
		{Date: day(0), Value: 1.2},
		{Date: day(5), Value: 9.9}, // no prediction for this date
	}

	artifact, _, err := Evaluate(linearModel(), table, actuals)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(artifact.Rows) != 1 {
		t.Errorf("Expected the unmatched actual to be dropped, got %d rows", len(artifact.Rows))
	}
}

func TestEvaluate_FailsOnMissingActual(t *testing.T) {
	table := testTable(t, 2, map[string][]float64{
		domain.ConstColumn: {1, 1},
		"f1":               {0.1, 0.2},
	}, []string{domain.ConstColumn, "f1"})
	actuals := []domain.ReturnPoint{{Date: day(0), Value: 1.2}}

	if _, _, err := Evaluate(linearModel(), table, actuals); err == nil {
		t.Fatal("Expected error for a predicted date without an actual")
	}
}

func TestEvaluateRegularized_ProducesRegularizedArtifact(t *testing.T) {
	train := testTable(t, 5, map[string][]float64{
		"f1": {1, 2, 3, 4, 5},
	}, []string{"f1"})
	trainY := []float64{3, 6, 9, 12, 15}

	test := testTable(t, 2, map[string][]float64{
		"f1": {6, 7},
	}, []string{"f1"})
	actuals := []domain.ReturnPoint{
		{Date: day(0), Value: 18},
		{Date: day(1), Value: 21},
	}

	artifact, mse, err := EvaluateRegularized("SEC", trainY, train, 0, test, actuals)
	if err != nil {
		t.Fatalf("EvaluateRegularized failed: %v", err)
	}
	if artifact.Kind != domain.ModelKindRegularized {
		t.Errorf("Expected regularized kind, got %s", artifact.Kind)
	}
	if mse > 1e-9 {
		t.Errorf("Expected near-zero error at zero penalty, got %v", mse)
	}
}

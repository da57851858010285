package regression

import (
	"fmt"
	"math"

	"factor-screen/internal/domain"
)

// Coordinate descent bounds for the elastic-net solver.
const (
	elasticNetMaxIter = 1000
	elasticNetTol     = 1e-8
)

// FitElasticNet refits y on the table's columns with an elastic-net
// penalty: (1/2n)·RSS + alpha·(l1wt·|β|₁ + (1-l1wt)/2·|β|₂²). All
// coefficients are penalized, the constant included. l1wt 0 is pure
// ridge-style shrinkage. The regularized
// model carries no p-values; it exists only for out-of-sample comparison.
func FitElasticNet(security string, y []float64, table *domain.ReturnTable, alpha, l1wt float64) (*domain.FittedModel, error) {
	if alpha < 0 {
		return nil, fmt.Errorf("%w: negative alpha %v", domain.ErrInvalidConfig, alpha)
	}
	if l1wt < 0 || l1wt > 1 {
		return nil, fmt.Errorf("%w: l1 weight %v outside [0,1]", domain.ErrInvalidConfig, l1wt)
	}

	names := table.Columns()
	n := table.Rows()
	k := len(names)
	if k == 0 {
		return nil, fmt.Errorf("%w: no columns to fit", ErrDegenerateFit)
	}
	if len(y) != n {
		return nil, fmt.Errorf("response has %d rows, design has %d", len(y), n)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty training slice", ErrDegenerateFit)
	}

	cols := make([][]float64, k)
	colSq := make([]float64, k) // (1/n) Σ x_ij², cached per column
	for j, name := range names {
		col, err := table.DenseColumn(name)
		if err != nil {
			return nil, fmt.Errorf("design column: %w", err)
		}
		cols[j] = col
		var sq float64
		for _, v := range col {
			sq += v * v
		}
		colSq[j] = sq / float64(n)
		if colSq[j] == 0 && alpha*(1-l1wt) == 0 {
			return nil, fmt.Errorf("%w: zero-variance column %q with no ridge penalty", ErrDegenerateFit, name)
		}
	}

	beta := make([]float64, k)
	residual := make([]float64, n)
	copy(residual, y)

	for iter := 0; iter < elasticNetMaxIter; iter++ {
		var maxDelta float64
		for j := 0; j < k; j++ {
			// Partial residual: add this coordinate's contribution back.
			if beta[j] != 0 {
				for i := 0; i < n; i++ {
					residual[i] += cols[j][i] * beta[j]
				}
			}
			var z float64
			for i := 0; i < n; i++ {
				z += cols[j][i] * residual[i]
			}
			z /= float64(n)

			updated := softThreshold(z, alpha*l1wt) / (colSq[j] + alpha*(1-l1wt))
			if updated != 0 {
				for i := 0; i < n; i++ {
					residual[i] -= cols[j][i] * updated
				}
			}
			if d := math.Abs(updated - beta[j]); d > maxDelta {
				maxDelta = d
			}
			beta[j] = updated
		}
		if maxDelta < elasticNetTol {
			break
		}
	}

	var ssr float64
	for _, r := range residual {
		ssr += r * r
	}
	r2, adjR2 := rsquared(y, ssr, n, k, table.HasColumn(domain.ConstColumn))

	coefs := make(map[string]float64, k)
	for j, name := range names {
		coefs[name] = beta[j]
	}

	return &domain.FittedModel{
		Security:     security,
		Names:        names,
		Coefficients: coefs,
		RSquared:     r2,
		AdjRSquared:  adjR2,
		Regularized:  true,
		Alpha:        alpha,
	}, nil
}

// softThreshold is the elastic-net shrinkage operator. At threshold 0 it is
// the identity and the update reduces to ridge regression.
func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

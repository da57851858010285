// Package regression implements the fitting engine behind the factor
// screen: ordinary least squares with per-coefficient significance, an
// elastic-net refit, and the backward-elimination selector.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"factor-screen/internal/domain"
)

// ErrDegenerateFit is returned when a regression cannot produce a usable
// model: a singular design matrix, or too few rows for the candidate set.
// Callers skip the security rather than aborting the run.
var ErrDegenerateFit = errors.New("degenerate fit")

// Fit runs ordinary least squares of y on the table's columns, in column
// order. Every column must be dense. The result carries coefficients,
// two-sided p-values and (adjusted) R².
func Fit(security string, y []float64, table *domain.ReturnTable) (*domain.FittedModel, error) {
	names := table.Columns()
	n := table.Rows()
	k := len(names)
	if k == 0 {
		return nil, fmt.Errorf("%w: no columns to fit", ErrDegenerateFit)
	}
	if len(y) != n {
		return nil, fmt.Errorf("response has %d rows, design has %d", len(y), n)
	}
	dof := n - k
	if dof <= 0 {
		return nil, fmt.Errorf("%w: %d rows for %d coefficients", ErrDegenerateFit, n, k)
	}

	x, err := designMatrix(table, names)
	if err != nil {
		return nil, err
	}
	yv := mat.NewVecDense(n, y)

	// beta = (X'X)^-1 X'y. The explicit inverse is needed anyway for the
	// coefficient standard errors; near-singularity surfaces here.
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateFit, err)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	// Residual sum of squares.
	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	var ssr float64
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}
	sigma2 := ssr / float64(dof)

	hasConst := table.HasColumn(domain.ConstColumn)
	r2, adjR2 := rsquared(y, ssr, n, k, hasConst)

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	coefs := make(map[string]float64, k)
	pvals := make(map[string]float64, k)
	for j, name := range names {
		b := beta.AtVec(j)
		coefs[name] = b
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		switch {
		case se > 0:
			t := b / se
			pvals[name] = 2 * tdist.CDF(-math.Abs(t))
		case b != 0:
			pvals[name] = 0
		default:
			pvals[name] = 1
		}
	}

	return &domain.FittedModel{
		Security:     security,
		Names:        names,
		Coefficients: coefs,
		PValues:      pvals,
		RSquared:     r2,
		AdjRSquared:  adjR2,
	}, nil
}

// rsquared computes R² and adjusted R². With an intercept the total sum of
// squares is centered; a constant-only model explains nothing and scores 0.
func rsquared(y []float64, ssr float64, n, k int, hasConst bool) (r2, adjR2 float64) {
	regressors := k
	if hasConst {
		regressors--
	}
	if regressors == 0 {
		return 0, 0
	}

	var tss float64
	if hasConst {
		mean := stat.Mean(y, nil)
		for _, v := range y {
			d := v - mean
			tss += d * d
		}
	} else {
		for _, v := range y {
			tss += v * v
		}
	}
	if tss == 0 {
		return 0, 0
	}

	r2 = 1 - ssr/tss
	adjR2 = 1 - (1-r2)*float64(n-1)/float64(n-k)
	return r2, adjR2
}

// designMatrix assembles the dense n×k design from the named columns.
func designMatrix(table *domain.ReturnTable, names []string) (*mat.Dense, error) {
	n := table.Rows()
	x := mat.NewDense(n, len(names), nil)
	for j, name := range names {
		col, err := table.DenseColumn(name)
		if err != nil {
			return nil, fmt.Errorf("design column: %w", err)
		}
		x.SetCol(j, col)
	}
	return x, nil
}

// AddConstant returns a copy of the table with the intercept column
// prepended. A table that already carries the constant is returned
// unchanged.
func AddConstant(table *domain.ReturnTable) (*domain.ReturnTable, error) {
	if table.HasColumn(domain.ConstColumn) {
		return table, nil
	}
	out, err := domain.NewReturnTable(table.Dates())
	if err != nil {
		return nil, err
	}
	ones := make([]float64, table.Rows())
	for i := range ones {
		ones[i] = 1
	}
	if err := out.AddDenseColumn(domain.ConstColumn, ones); err != nil {
		return nil, err
	}
	for _, name := range table.Columns() {
		cells, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(name, cells); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Package screening orchestrates one factor screening run:
// split → per-security backward elimination → acceptance gate →
// out-of-sample evaluation → portfolio aggregation.
package screening

import (
	"context"
	"errors"
	"fmt"
	"log"

	"factor-screen/internal/domain"
	"factor-screen/internal/evaluation"
	"factor-screen/internal/portfolio"
	"factor-screen/internal/regression"
	"factor-screen/internal/returns"
)

// SecurityResult holds the artifacts of one accepted security: the final
// model and both out-of-sample evaluations.
type SecurityResult struct {
	Security       string
	Model          *domain.FittedModel
	Plain          *domain.PredictionArtifact
	PlainMSE       float64
	Regularized    *domain.PredictionArtifact
	RegularizedMSE float64
}

// Result is the output of a full run: the portfolio mapping plus the
// per-security results in processing order.
type Result struct {
	Portfolio *portfolio.Mapping
	Accepted  []SecurityResult
	// Skipped maps a security to the reason it contributed nothing:
	// a degenerate fit or non-convergence below the acceptance gate.
	Skipped map[string]string
}

// Runner executes screening runs. Securities are processed strictly
// sequentially; the only state shared across them is the portfolio
// mapping, appended to after each security completes.
type Runner struct {
	cfg      domain.RunConfig
	selector *regression.Selector
	verbose  bool
}

// NewRunner validates the configuration and builds a runner. Invalid
// configuration is fatal here, before any data is touched.
func NewRunner(cfg domain.RunConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:      cfg,
		selector: regression.NewSelector(cfg.SignifLevel),
	}, nil
}

// WithVerbose enables per-security progress logging.
func (r *Runner) WithVerbose(v bool) *Runner {
	r.verbose = v
	return r
}

// Run screens every security against the candidate factors. The factor
// table and each security series must already share one date index (the
// alignment step's output); the constant column is added here and must not
// be supplied. Malformed inputs abort the run; degenerate fits and
// rejected models only skip their security.
func (r *Runner) Run(ctx context.Context, securities []domain.SecurityReturns, factors *domain.ReturnTable) (*Result, error) {
	if factors.HasColumn(domain.ConstColumn) {
		return nil, fmt.Errorf("factor table already contains %q column", domain.ConstColumn)
	}

	withConst, err := regression.AddConstant(factors)
	if err != nil {
		return nil, fmt.Errorf("add constant: %w", err)
	}
	factorTrain, factorTest, err := returns.Split(withConst, r.cfg.SplitRatio)
	if err != nil {
		return nil, fmt.Errorf("split factors: %w", err)
	}

	result := &Result{
		Portfolio: portfolio.NewMapping(),
		Skipped:   make(map[string]string),
	}

	for _, sec := range securities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := checkIndex(sec, withConst); err != nil {
			return nil, err
		}

		trainSeries, testSeries := returns.SplitSeries(sec.Series, r.cfg.SplitRatio)
		trainY := values(trainSeries)

		outcome, err := r.selector.Select(sec.ID, trainY, factorTrain)
		if err != nil {
			if errors.Is(err, regression.ErrDegenerateFit) {
				r.logf("security %s: %v, skipping", sec.ID, err)
				result.Skipped[sec.ID] = err.Error()
				continue
			}
			return nil, fmt.Errorf("security %s: %w", sec.ID, err)
		}
		if !outcome.Converged {
			r.logf("security %s: candidate set exhausted after %d rounds", sec.ID, outcome.Rounds)
			result.Skipped[sec.ID] = "candidate set exhausted"
			continue
		}

		model := outcome.Model
		if model.AdjRSquared < r.cfg.R2Threshold {
			r.logf("security %s: adjusted R² %.4f below threshold %.4f", sec.ID, model.AdjRSquared, r.cfg.R2Threshold)
			result.Skipped[sec.ID] = fmt.Sprintf("adjusted R² %.4f below threshold", model.AdjRSquared)
			continue
		}
		surviving := model.Factors()
		if len(surviving) == 0 {
			// Constant-only models never reach here: their adjusted R²
			// is 0 and the gate requires a positive threshold.
			result.Skipped[sec.ID] = "no surviving factors"
			continue
		}

		secResult, err := r.evaluate(sec.ID, model, trainY, factorTrain, factorTest, testSeries)
		if err != nil {
			return nil, fmt.Errorf("security %s: %w", sec.ID, err)
		}

		for _, factor := range surviving {
			result.Portfolio.Record(factor, sec.ID)
		}
		result.Accepted = append(result.Accepted, *secResult)
		r.logf("security %s: accepted with factors %v, adjusted R² %.4f, mse %.6g (regularized %.6g)",
			sec.ID, surviving, model.AdjRSquared, secResult.PlainMSE, secResult.RegularizedMSE)
	}

	return result, nil
}

// evaluate scores the accepted model out-of-sample, plain and regularized,
// over the same pruned factor columns so the MSEs are comparable.
func (r *Runner) evaluate(securityID string, model *domain.FittedModel, trainY []float64, factorTrain, factorTest *domain.ReturnTable, testSeries []domain.ReturnPoint) (*SecurityResult, error) {
	plain, plainMSE, err := evaluation.Evaluate(model, factorTest, testSeries)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	prunedTrain, err := factorTrain.Select(model.Names)
	if err != nil {
		return nil, fmt.Errorf("prune training factors: %w", err)
	}
	regularized, regMSE, err := evaluation.EvaluateRegularized(
		securityID, trainY, prunedTrain, r.cfg.RegularizationAlpha, factorTest, testSeries)
	if err != nil {
		return nil, fmt.Errorf("evaluate regularized: %w", err)
	}

	return &SecurityResult{
		Security:       securityID,
		Model:          model,
		Plain:          plain,
		PlainMSE:       plainMSE,
		Regularized:    regularized,
		RegularizedMSE: regMSE,
	}, nil
}

// checkIndex verifies a security series shares the factor table's date
// index. Mismatched indices are malformed input and fatal.
func checkIndex(sec domain.SecurityReturns, factors *domain.ReturnTable) error {
	if len(sec.Series) != factors.Rows() {
		return fmt.Errorf("security %s has %d rows, factor table has %d", sec.ID, len(sec.Series), factors.Rows())
	}
	for i, p := range sec.Series {
		if domain.DateKey(p.Date) != domain.DateKey(factors.DateAt(i)) {
			return fmt.Errorf("security %s date %s does not match factor index date %s at row %d",
				sec.ID, domain.DateKey(p.Date), domain.DateKey(factors.DateAt(i)), i)
		}
	}
	return nil
}

func values(series []domain.ReturnPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}

func (r *Runner) logf(format string, args ...any) {
	if r.verbose {
		log.Printf("[screening] "+format, args...)
	}
}

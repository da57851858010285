package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when run configuration fails validation.
// Configuration errors are fatal at run start; a screen never proceeds with
// a degenerate split or a negative penalty.
var ErrInvalidConfig = errors.New("invalid run configuration")

// Default run parameters.
const (
	DefaultSignifLevel         = 0.05
	DefaultR2Threshold         = 0.5
	DefaultSplitRatio          = 0.7
	DefaultRegularizationAlpha = 0.01
)

// RunConfig carries the tunable parameters of one screening run. There is
// no process-wide state; the config is passed explicitly into the run entry
// point.
type RunConfig struct {
	// SignifLevel is the p-value cutoff; factors above it are eliminated.
	SignifLevel float64
	// R2Threshold is the minimum adjusted R² to accept a converged model.
	R2Threshold float64
	// SplitRatio positions the train/test boundary at floor(ratio * rows).
	SplitRatio float64
	// RegularizationAlpha is the elastic-net shrinkage strength for the
	// regularized out-of-sample evaluation.
	RegularizationAlpha float64
}

// DefaultRunConfig returns the standard configuration.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		SignifLevel:         DefaultSignifLevel,
		R2Threshold:         DefaultR2Threshold,
		SplitRatio:          DefaultSplitRatio,
		RegularizationAlpha: DefaultRegularizationAlpha,
	}
}

// Validate checks the configuration. SplitRatio must lie strictly inside
// (0,1) and RegularizationAlpha must not be negative. SignifLevel must be a
// probability.
func (c RunConfig) Validate() error {
	if c.SplitRatio <= 0 || c.SplitRatio >= 1 {
		return fmt.Errorf("%w: split ratio %v outside (0,1)", ErrInvalidConfig, c.SplitRatio)
	}
	if c.RegularizationAlpha < 0 {
		return fmt.Errorf("%w: regularization alpha %v is negative", ErrInvalidConfig, c.RegularizationAlpha)
	}
	if c.SignifLevel <= 0 || c.SignifLevel >= 1 {
		return fmt.Errorf("%w: significance level %v outside (0,1)", ErrInvalidConfig, c.SignifLevel)
	}
	return nil
}

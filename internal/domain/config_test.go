package domain

import (
	"errors"
	"testing"
)

func TestRunConfig_ValidateDefaults(t *testing.T) {
	if err := DefaultRunConfig().Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
}

func TestRunConfig_ValidateRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*RunConfig)
	}{
		{"zero split ratio", func(c *RunConfig) { c.SplitRatio = 0 }},
		{"split ratio of one", func(c *RunConfig) { c.SplitRatio = 1 }},
		{"negative alpha", func(c *RunConfig) { c.RegularizationAlpha = -0.5 }},
		{"zero significance", func(c *RunConfig) { c.SignifLevel = 0 }},
		{"significance of one", func(c *RunConfig) { c.SignifLevel = 1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultRunConfig()
			tc.mod(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFittedModel_FactorsExcludesConstant(t *testing.T) {
	model := &FittedModel{
		Security: "TEST",
		Names:    []string{ConstColumn, "oil", "gold"},
	}
	factors := model.Factors()
	if len(factors) != 2 || factors[0] != "oil" || factors[1] != "gold" {
		t.Errorf("Expected [oil gold], got %v", factors)
	}
}

func TestPredictionArtifact_MSE(t *testing.T) {
	artifact := &PredictionArtifact{
		Rows: []PredictionRow{
			{SquaredError: 4},
			{SquaredError: 2},
		},
	}
	if got := artifact.MSE(); got != 3 {
		t.Errorf("Expected MSE 3, got %v", got)
	}

	empty := &PredictionArtifact{}
	if got := empty.MSE(); got != 0 {
		t.Errorf("Expected MSE 0 for empty artifact, got %v", got)
	}
}

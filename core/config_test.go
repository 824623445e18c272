package core

import (
	"errors"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig failed validation: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-positive weight limit", func(c *Config) { c.Limits.MaxTotalWeightKg = 0 }},
		{"inverted CG envelope", func(c *Config) { c.Limits.CGMinM, c.Limits.CGMaxM = 26.8, 16.5 }},
		{"empty-weight CG outside envelope", func(c *Config) { c.Limits.EmptyWeightCGM = 30 }},
		{"zero scoring weights", func(c *Config) { c.Scoring = ScoringWeights{} }},
		{"negative scoring weight", func(c *Config) { c.Scoring.TypeAffinity = -0.1 }},
		{"non-positive recommendation cap", func(c *Config) { c.MaxRecommendations = 0 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfigInvalid) {
			t.Fatalf("%s: err = %v, want ErrConfigInvalid", tc.name, err)
		}
	}
}

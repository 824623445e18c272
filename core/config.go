package core

import (
	"errors"
	"fmt"
)

var ErrConfigInvalid = errors.New("invalid engine config")

// AircraftLimits are the certified limits the engine enforces. They are fixed
// at construction and never mutated afterwards.
type AircraftLimits struct {
	// MaxTotalWeightKg is the maximum aggregate cargo weight.
	MaxTotalWeightKg float64

	// CGMinM / CGMaxM bound the certified longitudinal CG envelope, metres
	// aft of the reference datum. Both bounds are inclusive.
	CGMinM float64
	CGMaxM float64

	// EmptyWeightKg and EmptyWeightCGM describe the aircraft itself. The
	// aircraft-level CG blends them with the cargo ledger; EmptyWeightCGM is
	// also reported as the current CG while nothing is loaded, so the
	// zero-weight case never divides by zero.
	EmptyWeightKg  float64
	EmptyWeightCGM float64

	// Per-deck stack height ceilings, metres.
	LowerDeckStackHeightM float64
	MainDeckStackHeightM  float64
}

// ScoringWeights combine the fit-score factors. Each factor is normalised to
// [0,1] before weighting; the composite is the weighted mean, so the weights
// only need to be non-negative and not all zero.
type ScoringWeights struct {
	VolumetricFit  float64
	WeightMargin   float64
	DeckPreference float64
	TypeAffinity   float64
	Fragility      float64
}

func (w ScoringWeights) total() float64 {
	return w.VolumetricFit + w.WeightMargin + w.DeckPreference + w.TypeAffinity + w.Fragility
}

// AlertThresholds govern when the capacity monitor escalates. Percentages are
// 0-100.
type AlertThresholds struct {
	CapacityMediumPct   float64
	CapacityHighPct     float64
	CapacityCriticalPct float64
	WeightCriticalPct   float64

	// BalanceScoreMin is the load-balance score at or above which the
	// aircraft is considered balanced.
	BalanceScoreMin float64

	// ForecastExceedPct is the projected utilization at which the capacity
	// forecast flags an overrun.
	ForecastExceedPct float64
}

// Config is the explicit configuration object handed to the engine at
// construction. The engine reads no environment, files or network itself.
type Config struct {
	Limits             AircraftLimits
	Scoring            ScoringWeights
	Alerts             AlertThresholds
	MaxRecommendations int
}

// DefaultConfig returns the documented defaults: a wide-body freighter with
// 110 t of cargo capacity and a 16.5-26.8 m CG envelope.
//
// The scoring weights are deliberate but not sacred: volumetric fit and
// weight margin dominate because they are physical, deck preference and type
// affinity are softer operational signals, and fragility is a tie-breaker.
// Operators tune them through this struct rather than editing the scorer.
func DefaultConfig() Config {
	return Config{
		Limits: AircraftLimits{
			MaxTotalWeightKg:      110000,
			CGMinM:                16.5,
			CGMaxM:                26.8,
			EmptyWeightKg:         140000,
			EmptyWeightCGM:        21.65,
			LowerDeckStackHeightM: 2.4,
			MainDeckStackHeightM:  3.2,
		},
		Scoring: ScoringWeights{
			VolumetricFit:  0.35,
			WeightMargin:   0.25,
			DeckPreference: 0.15,
			TypeAffinity:   0.15,
			Fragility:      0.10,
		},
		Alerts: AlertThresholds{
			CapacityMediumPct:   70,
			CapacityHighPct:     85,
			CapacityCriticalPct: 95,
			WeightCriticalPct:   98,
			BalanceScoreMin:     70,
			ForecastExceedPct:   95,
		},
		MaxRecommendations: 10,
	}
}

// Validate rejects configurations the engine cannot operate under.
func (c Config) Validate() error {
	if c.Limits.MaxTotalWeightKg <= 0 {
		return fmt.Errorf("%w: max total weight must be positive", ErrConfigInvalid)
	}
	if c.Limits.CGMinM >= c.Limits.CGMaxM {
		return fmt.Errorf("%w: CG envelope [%.2f, %.2f] is empty", ErrConfigInvalid, c.Limits.CGMinM, c.Limits.CGMaxM)
	}
	if c.Limits.EmptyWeightCGM < c.Limits.CGMinM || c.Limits.EmptyWeightCGM > c.Limits.CGMaxM {
		return fmt.Errorf("%w: empty-weight CG %.2f outside envelope", ErrConfigInvalid, c.Limits.EmptyWeightCGM)
	}
	if c.Limits.EmptyWeightKg < 0 {
		return fmt.Errorf("%w: empty weight must be non-negative", ErrConfigInvalid)
	}
	if c.Scoring.total() <= 0 {
		return fmt.Errorf("%w: scoring weights sum to zero", ErrConfigInvalid)
	}
	if c.Scoring.VolumetricFit < 0 || c.Scoring.WeightMargin < 0 || c.Scoring.DeckPreference < 0 ||
		c.Scoring.TypeAffinity < 0 || c.Scoring.Fragility < 0 {
		return fmt.Errorf("%w: scoring weights must be non-negative", ErrConfigInvalid)
	}
	if c.MaxRecommendations <= 0 {
		return fmt.Errorf("%w: max recommendations must be positive", ErrConfigInvalid)
	}
	return nil
}

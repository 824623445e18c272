// Package profile loads aircraft profiles from TOML files and overlays them
// on the engine's documented defaults. Keys absent from the file keep their
// default values, so a profile only needs to state what differs.
package profile

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/skyfreight/loadmaster/core"
)

// fileProfile is the aircraft profile TOML key mapping.
type fileProfile struct {
	Name string `toml:"name"`

	Limits struct {
		MaxTotalWeightKg      float64 `toml:"max_total_weight_kg"`
		CGMinM                float64 `toml:"cg_min_m"`
		CGMaxM                float64 `toml:"cg_max_m"`
		EmptyWeightKg         float64 `toml:"empty_weight_kg"`
		EmptyWeightCGM        float64 `toml:"empty_weight_cg_m"`
		LowerDeckStackHeightM float64 `toml:"lower_deck_stack_height_m"`
		MainDeckStackHeightM  float64 `toml:"main_deck_stack_height_m"`
	} `toml:"limits"`

	Scoring struct {
		VolumetricFit  float64 `toml:"volumetric_fit"`
		WeightMargin   float64 `toml:"weight_margin"`
		DeckPreference float64 `toml:"deck_preference"`
		TypeAffinity   float64 `toml:"type_affinity"`
		Fragility      float64 `toml:"fragility"`
	} `toml:"scoring"`

	Alerts struct {
		CapacityMediumPct   float64 `toml:"capacity_medium_pct"`
		CapacityHighPct     float64 `toml:"capacity_high_pct"`
		CapacityCriticalPct float64 `toml:"capacity_critical_pct"`
		WeightCriticalPct   float64 `toml:"weight_critical_pct"`
		BalanceScoreMin     float64 `toml:"balance_score_min"`
		ForecastExceedPct   float64 `toml:"forecast_exceed_pct"`
	} `toml:"alerts"`

	MaxRecommendations int `toml:"max_recommendations"`
}

// Profile is a named engine configuration.
type Profile struct {
	Name   string
	Config core.Config
}

// Load reads the TOML profile at path, overlays it on core.DefaultConfig,
// and validates the result.
func Load(path string) (Profile, error) {
	cfg := core.DefaultConfig()

	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Profile{}, fmt.Errorf("load aircraft profile: %w", err)
	}

	if meta.IsDefined("limits", "max_total_weight_kg") {
		cfg.Limits.MaxTotalWeightKg = raw.Limits.MaxTotalWeightKg
	}
	if meta.IsDefined("limits", "cg_min_m") {
		cfg.Limits.CGMinM = raw.Limits.CGMinM
	}
	if meta.IsDefined("limits", "cg_max_m") {
		cfg.Limits.CGMaxM = raw.Limits.CGMaxM
	}
	if meta.IsDefined("limits", "empty_weight_kg") {
		cfg.Limits.EmptyWeightKg = raw.Limits.EmptyWeightKg
	}
	if meta.IsDefined("limits", "empty_weight_cg_m") {
		cfg.Limits.EmptyWeightCGM = raw.Limits.EmptyWeightCGM
	}
	if meta.IsDefined("limits", "lower_deck_stack_height_m") {
		cfg.Limits.LowerDeckStackHeightM = raw.Limits.LowerDeckStackHeightM
	}
	if meta.IsDefined("limits", "main_deck_stack_height_m") {
		cfg.Limits.MainDeckStackHeightM = raw.Limits.MainDeckStackHeightM
	}

	if meta.IsDefined("scoring", "volumetric_fit") {
		cfg.Scoring.VolumetricFit = raw.Scoring.VolumetricFit
	}
	if meta.IsDefined("scoring", "weight_margin") {
		cfg.Scoring.WeightMargin = raw.Scoring.WeightMargin
	}
	if meta.IsDefined("scoring", "deck_preference") {
		cfg.Scoring.DeckPreference = raw.Scoring.DeckPreference
	}
	if meta.IsDefined("scoring", "type_affinity") {
		cfg.Scoring.TypeAffinity = raw.Scoring.TypeAffinity
	}
	if meta.IsDefined("scoring", "fragility") {
		cfg.Scoring.Fragility = raw.Scoring.Fragility
	}

	if meta.IsDefined("alerts", "capacity_medium_pct") {
		cfg.Alerts.CapacityMediumPct = raw.Alerts.CapacityMediumPct
	}
	if meta.IsDefined("alerts", "capacity_high_pct") {
		cfg.Alerts.CapacityHighPct = raw.Alerts.CapacityHighPct
	}
	if meta.IsDefined("alerts", "capacity_critical_pct") {
		cfg.Alerts.CapacityCriticalPct = raw.Alerts.CapacityCriticalPct
	}
	if meta.IsDefined("alerts", "weight_critical_pct") {
		cfg.Alerts.WeightCriticalPct = raw.Alerts.WeightCriticalPct
	}
	if meta.IsDefined("alerts", "balance_score_min") {
		cfg.Alerts.BalanceScoreMin = raw.Alerts.BalanceScoreMin
	}
	if meta.IsDefined("alerts", "forecast_exceed_pct") {
		cfg.Alerts.ForecastExceedPct = raw.Alerts.ForecastExceedPct
	}

	if meta.IsDefined("max_recommendations") {
		cfg.MaxRecommendations = raw.MaxRecommendations
	}

	if err := cfg.Validate(); err != nil {
		return Profile{}, fmt.Errorf("aircraft profile %s: %w", path, err)
	}

	name := raw.Name
	if name == "" {
		name = "default"
	}
	return Profile{Name: name, Config: cfg}, nil
}

package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/skyfreight/loadmaster/core"
)

func writeProfile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aircraft.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadOverlaysOnlyDefinedKeys(t *testing.T) {
	path := writeProfile(t, `
name = "B777F-heavy"

[limits]
max_total_weight_kg = 102000.0
cg_max_m = 26.5

[scoring]
volumetric_fit = 0.5
`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "B777F-heavy" {
		t.Fatalf("Name = %q, want B777F-heavy", p.Name)
	}
	if p.Config.Limits.MaxTotalWeightKg != 102000 {
		t.Fatalf("MaxTotalWeightKg = %v, want 102000", p.Config.Limits.MaxTotalWeightKg)
	}
	if p.Config.Limits.CGMaxM != 26.5 {
		t.Fatalf("CGMaxM = %v, want 26.5", p.Config.Limits.CGMaxM)
	}

	// Undefined keys keep their defaults.
	def := core.DefaultConfig()
	if p.Config.Limits.CGMinM != def.Limits.CGMinM {
		t.Fatalf("CGMinM = %v, want default %v", p.Config.Limits.CGMinM, def.Limits.CGMinM)
	}
	if p.Config.Scoring.WeightMargin != def.Scoring.WeightMargin {
		t.Fatalf("WeightMargin = %v, want default %v", p.Config.Scoring.WeightMargin, def.Scoring.WeightMargin)
	}
	if p.Config.Scoring.VolumetricFit != 0.5 {
		t.Fatalf("VolumetricFit = %v, want 0.5", p.Config.Scoring.VolumetricFit)
	}
	if p.Config.MaxRecommendations != def.MaxRecommendations {
		t.Fatalf("MaxRecommendations = %v, want default %v", p.Config.MaxRecommendations, def.MaxRecommendations)
	}
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	path := writeProfile(t, "")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "default" {
		t.Fatalf("Name = %q, want default", p.Name)
	}
	if p.Config != core.DefaultConfig() {
		t.Fatalf("Config = %+v, want defaults", p.Config)
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := writeProfile(t, `
[limits]
cg_min_m = 30.0
`)

	_, err := Load(path)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Fatalf("Load error = %v, want ErrConfigInvalid", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}

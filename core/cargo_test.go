package core

import (
	"errors"
	"testing"
)

func TestCargoValidate(t *testing.T) {
	good := Cargo{
		ID:       "ok",
		Dims:     Dimensions{Length: 1, Width: 1, Height: 1},
		WeightKg: 10,
		Type:     CargoGeneral,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid cargo rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Cargo)
	}{
		{"empty id", func(c *Cargo) { c.ID = "" }},
		{"zero dimension", func(c *Cargo) { c.Dims.Width = 0 }},
		{"negative dimension", func(c *Cargo) { c.Dims.Height = -2 }},
		{"zero weight", func(c *Cargo) { c.WeightKg = 0 }},
		{"negative weight", func(c *Cargo) { c.WeightKg = -5 }},
		{"unknown type", func(c *Cargo) { c.Type = "livestock" }},
		{"empty type", func(c *Cargo) { c.Type = "" }},
	}
	for _, tc := range cases {
		c := good
		tc.mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrCargoInvalid) {
			t.Fatalf("%s: err = %v, want ErrCargoInvalid", tc.name, err)
		}
	}
}

func TestCargoDensity(t *testing.T) {
	c := Cargo{Dims: Dimensions{Length: 2, Width: 1, Height: 1}, WeightKg: 500}
	if got := c.Density(); got != 250 {
		t.Fatalf("Density = %v, want 250", got)
	}
	if got := (Cargo{WeightKg: 100}).Density(); got != 0 {
		t.Fatalf("degenerate Density = %v, want 0", got)
	}
}

func TestRequiresHandling(t *testing.T) {
	c := Cargo{SpecialHandling: []string{HandlingTempControlled, HandlingHeavyLift}}
	if !c.RequiresHandling(HandlingHeavyLift) {
		t.Fatalf("expected heavy_lift to be required")
	}
	if c.RequiresHandling(HandlingOrientationCritical) {
		t.Fatalf("orientation_critical should not be required")
	}
}

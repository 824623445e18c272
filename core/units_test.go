package core

import "testing"

func TestDimensionsVolumeAndValid(t *testing.T) {
	d := Dimensions{Length: 2, Width: 1.5, Height: 0.5}
	if got := d.Volume(); got != 1.5 {
		t.Fatalf("Volume = %v, want 1.5", got)
	}
	if !d.Valid() {
		t.Fatalf("expected %v to be valid", d)
	}
	if (Dimensions{Length: 2, Width: 0, Height: 1}).Valid() {
		t.Fatalf("zero-width dimensions reported valid")
	}
	if (Dimensions{Length: -1, Width: 1, Height: 1}).Valid() {
		t.Fatalf("negative-length dimensions reported valid")
	}
}

func TestOrientationsNonTiltable(t *testing.T) {
	d := Dimensions{Length: 3, Width: 2, Height: 1}
	got := d.Orientations(false)
	if len(got) != 1 || got[0] != d {
		t.Fatalf("non-tiltable orientations = %v, want only the declared one", got)
	}
}

func TestOrientationsTiltable(t *testing.T) {
	d := Dimensions{Length: 3, Width: 2, Height: 1}
	got := d.Orientations(true)
	if len(got) != 6 {
		t.Fatalf("tiltable orientations = %d, want 6", len(got))
	}
	for _, o := range got {
		if o.Volume() != d.Volume() {
			t.Fatalf("orientation %v changed volume", o)
		}
	}
}

func TestFitsWithinAnyRequiresRotation(t *testing.T) {
	// Too tall as declared; fits lying on its side.
	cargo := Dimensions{Length: 1.0, Width: 1.0, Height: 2.0}
	env := Dimensions{Length: 2.2, Width: 1.2, Height: 1.2}

	if cargo.FitsWithin(env) {
		t.Fatalf("expected declared orientation not to fit")
	}
	if cargo.FitsWithinAny(env, false) {
		t.Fatalf("non-tiltable cargo should not fit")
	}
	if !cargo.FitsWithinAny(env, true) {
		t.Fatalf("tiltable cargo should fit after rotation")
	}
}

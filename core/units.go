package core

// Dimensions describes a rectangular extent in metres: cargo items and
// position envelopes both use it. All three axes must be positive for the
// value to describe a physical object.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

// Volume returns the enclosed volume in cubic metres.
func (d Dimensions) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Valid reports whether all three axes are strictly positive.
func (d Dimensions) Valid() bool {
	return d.Length > 0 && d.Width > 0 && d.Height > 0
}

// FitsWithin reports whether d fits inside env without rotation.
func (d Dimensions) FitsWithin(env Dimensions) bool {
	return d.Length <= env.Length && d.Width <= env.Width && d.Height <= env.Height
}

// Orientations returns the candidate placement orientations for the extent.
// A non-tiltable item may only be loaded as declared; a tiltable one may be
// rotated onto any face, so all six axis permutations are candidates.
func (d Dimensions) Orientations(tiltable bool) []Dimensions {
	if !tiltable {
		return []Dimensions{d}
	}
	l, w, h := d.Length, d.Width, d.Height
	return []Dimensions{
		{l, w, h},
		{l, h, w},
		{w, l, h},
		{w, h, l},
		{h, l, w},
		{h, w, l},
	}
}

// FitsWithinAny reports whether any permitted orientation of d fits inside env.
func (d Dimensions) FitsWithinAny(env Dimensions, tiltable bool) bool {
	for _, o := range d.Orientations(tiltable) {
		if o.FitsWithin(env) {
			return true
		}
	}
	return false
}

// Point3 is a point in the aircraft body frame, metres. X is the longitudinal
// station measured aft from the reference datum; X is the axis that matters
// for centre-of-gravity arithmetic. Y is lateral (positive starboard), Z is
// vertical above the lower-deck floor.
type Point3 struct {
	X, Y, Z float64
}

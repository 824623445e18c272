package core

import "fmt"

// Layout constants for the modelled freighter: 24 lower-deck container
// positions and 32 main-deck pallet positions, 56 in total.
const (
	LowerDeckRows      = 12
	MainDeckRows       = 16
	TotalPositionCount = 2*LowerDeckRows + 2*MainDeckRows
)

// DefaultLayout builds the 56-position freighter layout, every position
// AVAILABLE. The layout is deterministic: ids sort lexically into
// front-to-back, left-before-right order within each deck.
//
// Geometry notes:
//   - Lower-deck positions take LD3-class containers: a 1.6 x 1.5 x 1.6 m
//     envelope and 1,500 kg per position. The four aft rows are tiered, so
//     only stackable cargo is accepted there.
//   - Main-deck positions take PMC-class pallets: 3.1 x 2.4 x 2.9 m and
//     2,500 kg per position.
//   - Arms span the fuselage so the loadable envelope brackets the certified
//     CG range on both sides.
//   - The two rearmost rows of each deck sit close to the empennage and are
//     flagged high-vibration.
func DefaultLayout() []*Position {
	positions := make([]*Position, 0, TotalPositionCount)

	for row := 1; row <= LowerDeckRows; row++ {
		arm := 14.0 + float64(row-1)*1.5
		for _, side := range []string{"L", "R"} {
			y := -1.1
			if side == "R" {
				y = 1.1
			}
			positions = append(positions, &Position{
				ID:                fmt.Sprintf("LD-%02d-%s", row, side),
				Deck:              LowerDeck,
				Coordinates:       Point3{X: arm, Y: y, Z: 0.0},
				MaxDims:           Dimensions{Length: 1.6, Width: 1.5, Height: 1.6},
				MaxWeightKg:       1500,
				ArmM:              arm,
				Tiered:            row > LowerDeckRows-4,
				HighVibration:     row > LowerDeckRows-2,
				SupportedHandling: []string{HandlingTempControlled},
				State:             StateAvailable,
			})
		}
	}

	for row := 1; row <= MainDeckRows; row++ {
		arm := 13.0 + float64(row-1)*1.2
		for _, side := range []string{"L", "R"} {
			y := -1.6
			if side == "R" {
				y = 1.6
			}
			positions = append(positions, &Position{
				ID:                fmt.Sprintf("MD-%02d-%s", row, side),
				Deck:              MainDeck,
				Coordinates:       Point3{X: arm, Y: y, Z: 2.2},
				MaxDims:           Dimensions{Length: 3.1, Width: 2.4, Height: 2.9},
				MaxWeightKg:       2500,
				ArmM:              arm,
				HighVibration:     row > MainDeckRows-2,
				SupportedHandling: []string{HandlingHeavyLift, HandlingOrientationCritical},
				State:             StateAvailable,
			})
		}
	}

	return positions
}

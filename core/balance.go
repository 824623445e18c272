package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrWeightBalance = errors.New("weight and balance violation")

// WeightBalanceImpact describes what committing a cargo item to a candidate
// position would do to the aircraft's weight and centre of gravity. Only the
// longitudinal (X) coordinate is safety-relevant.
type WeightBalanceImpact struct {
	CurrentCG     Point3
	NewCG         Point3
	CGShiftM      float64
	NewWeightKg   float64
	WithinLimits  bool
	LimitBreaches []string
}

// BalanceStatus is the engine's current loading condition.
type BalanceStatus struct {
	WeightKg       float64
	CGM            float64
	WeightMarginKg float64
	// State is "normal", "caution" or "critical".
	State string
}

// ViolationCheck is the outcome of a weight-violation search: whether the
// proposed placement violates limits and, when it does, which available
// positions would not.
type ViolationCheck struct {
	HasViolation bool
	Alternatives []Position
}

// WeightBalanceEngine evaluates CG and total-weight limits against the
// inventory's aggregate load. It never mutates occupancy; the inventory's
// decimal ledger is the single source of truth for the current load.
type WeightBalanceEngine struct {
	inv    *PositionInventory
	limits AircraftLimits
}

// NewWeightBalanceEngine builds the engine over the given inventory.
func NewWeightBalanceEngine(inv *PositionInventory, limits AircraftLimits) *WeightBalanceEngine {
	return &WeightBalanceEngine{inv: inv, limits: limits}
}

// CenterOfGravity computes the weighted-mean CG sum(w*a)/sum(w) for parallel
// weight and arm slices. A zero total weight is not an error: the function
// returns the configured empty-weight CG, which is the aircraft's actual CG
// when no cargo is loaded.
func (e *WeightBalanceEngine) CenterOfGravity(weightsKg, armsM []float64) (float64, error) {
	if len(weightsKg) != len(armsM) {
		return 0, fmt.Errorf("%w: %d weights against %d arms", ErrWeightBalance, len(weightsKg), len(armsM))
	}

	var totalWeight, totalMoment float64
	for i, w := range weightsKg {
		totalWeight += w
		totalMoment += w * armsM[i]
	}
	if totalWeight == 0 {
		return e.limits.EmptyWeightCGM, nil
	}
	return totalMoment / totalWeight, nil
}

// ValidateCGLimits reports whether cg lies within [low, high], inclusive on
// both bounds.
func ValidateCGLimits(cg, low, high float64) bool {
	return cg >= low && cg <= high
}

// aircraftCG blends the empty aircraft with a cargo load to get the
// aircraft-level CG the envelope applies to. With a zero-weight aircraft
// configuration it degenerates to the cargo-only CG, and with no load at all
// it returns the empty-weight CG.
func (e *WeightBalanceEngine) aircraftCG(cargoWeightKg, cargoMomentKgM float64) float64 {
	total := e.limits.EmptyWeightKg + cargoWeightKg
	if total == 0 {
		return e.limits.EmptyWeightCGM
	}
	return (e.limits.EmptyWeightKg*e.limits.EmptyWeightCGM + cargoMomentKgM) / total
}

// CurrentCG returns the aircraft-level CG, or the empty-weight CG when
// nothing is occupied. The empty aircraft is by definition within limits.
func (e *WeightBalanceEngine) CurrentCG() float64 {
	w, cg, loaded := e.inv.OccupiedLoad()
	if !loaded {
		return e.limits.EmptyWeightCGM
	}
	return e.aircraftCG(w, w*cg)
}

// Impact computes, without mutating anything, the weight and CG consequences
// of adding cargo at the candidate position. NewWeightKg is the cargo load
// only; the CG figures are aircraft-level, empty weight included.
func (e *WeightBalanceEngine) Impact(cargo Cargo, pos Position) WeightBalanceImpact {
	curWeight, curCargoCG, _ := e.inv.OccupiedLoad()
	curMoment := curWeight * curCargoCG

	curCG := e.aircraftCG(curWeight, curMoment)
	newWeight := curWeight + cargo.WeightKg
	newCG := e.aircraftCG(newWeight, curMoment+cargo.WeightKg*pos.ArmM)

	impact := WeightBalanceImpact{
		CurrentCG:   Point3{X: curCG},
		NewCG:       Point3{X: newCG},
		CGShiftM:    newCG - curCG,
		NewWeightKg: newWeight,
	}

	if newWeight > e.limits.MaxTotalWeightKg {
		impact.LimitBreaches = append(impact.LimitBreaches, fmt.Sprintf(
			"total weight %.0f kg exceeds limit %.0f kg", newWeight, e.limits.MaxTotalWeightKg))
	}
	if !ValidateCGLimits(newCG, e.limits.CGMinM, e.limits.CGMaxM) {
		impact.LimitBreaches = append(impact.LimitBreaches, fmt.Sprintf(
			"CG %.2f m outside envelope [%.2f, %.2f] m", newCG, e.limits.CGMinM, e.limits.CGMaxM))
	}
	impact.WithinLimits = len(impact.LimitBreaches) == 0
	return impact
}

// HandleWeightViolation checks the proposed placement and, when it breaches
// weight or CG limits, ranks the given available positions by how little
// they would move the CG. Positions that themselves breach limits are
// excluded from the alternatives.
func (e *WeightBalanceEngine) HandleWeightViolation(cargo Cargo, pos Position, available []Position) ViolationCheck {
	if e.Impact(cargo, pos).WithinLimits {
		return ViolationCheck{}
	}

	type ranked struct {
		pos   Position
		shift float64
	}
	var ok []ranked
	for _, alt := range available {
		if alt.ID == pos.ID {
			continue
		}
		if imp := e.Impact(cargo, alt); imp.WithinLimits {
			ok = append(ok, ranked{pos: alt, shift: math.Abs(imp.CGShiftM)})
		}
	}
	sort.Slice(ok, func(i, j int) bool {
		if ok[i].shift != ok[j].shift {
			return ok[i].shift < ok[j].shift
		}
		return ok[i].pos.ID < ok[j].pos.ID
	})

	alts := make([]Position, 0, len(ok))
	for _, r := range ok {
		alts = append(alts, r.pos)
	}
	return ViolationCheck{HasViolation: true, Alternatives: alts}
}

// Status classifies the current loading condition. Critical means the weight
// margin fell under 5% of the limit or the CG sits within 0.5 m of an
// envelope bound; caution uses 15% and 1.5 m.
func (e *WeightBalanceEngine) Status() BalanceStatus {
	weight, cargoCG, loaded := e.inv.OccupiedLoad()
	cg := e.limits.EmptyWeightCGM
	if loaded {
		cg = e.aircraftCG(weight, weight*cargoCG)
	}

	status := BalanceStatus{
		WeightKg:       weight,
		CGM:            cg,
		WeightMarginKg: e.limits.MaxTotalWeightKg - weight,
		State:          "normal",
	}

	cgEdge := math.Min(cg-e.limits.CGMinM, e.limits.CGMaxM-cg)
	switch {
	case status.WeightMarginKg < 0.05*e.limits.MaxTotalWeightKg || cgEdge < 0.5:
		status.State = "critical"
	case status.WeightMarginKg < 0.15*e.limits.MaxTotalWeightKg || cgEdge < 1.5:
		status.State = "caution"
	}
	return status
}

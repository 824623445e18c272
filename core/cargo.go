package core

import (
	"errors"
	"fmt"
)

var (
	ErrCargoInvalid       = errors.New("invalid cargo")
	ErrNoFeasiblePosition = errors.New("no feasible position")
)

// CargoType is a closed enumeration of freight categories. Scoring treats it
// as a lookup key into the type/deck affinity table rather than inspecting
// the cargo at runtime.
type CargoType string

const (
	CargoElectronics    CargoType = "electronics"
	CargoTextiles       CargoType = "textiles"
	CargoMachinery      CargoType = "machinery"
	CargoAutomotive     CargoType = "automotive_parts"
	CargoPerishables    CargoType = "perishables"
	CargoDangerousGoods CargoType = "dangerous_goods"
	CargoGeneral        CargoType = "general"
)

var knownCargoTypes = map[CargoType]struct{}{
	CargoElectronics:    {},
	CargoTextiles:       {},
	CargoMachinery:      {},
	CargoAutomotive:     {},
	CargoPerishables:    {},
	CargoDangerousGoods: {},
	CargoGeneral:        {},
}

// Special-handling tags a cargo item may require. A position that does not
// support a required tag is infeasible for that item.
const (
	HandlingOrientationCritical = "orientation_critical"
	HandlingHeavyLift           = "heavy_lift"
	HandlingTempControlled      = "temperature_controlled"
)

// Priority orders competing cargo requests at the caller's side. The engine
// records it for audit and reasoning but does not reorder work by it.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Cargo is a single physical item to be loaded. Values are immutable once
// created; the inventory stores non-owning copies when a position is claimed.
type Cargo struct {
	ID              string
	Dims            Dimensions
	WeightKg        float64
	Stackable       bool
	Tiltable        bool
	Fragile         bool
	Type            CargoType
	SpecialHandling []string
}

// Volume returns the item volume in cubic metres.
func (c Cargo) Volume() float64 { return c.Dims.Volume() }

// Density returns kg per cubic metre, or 0 for degenerate dimensions.
func (c Cargo) Density() float64 {
	v := c.Dims.Volume()
	if v <= 0 {
		return 0
	}
	return c.WeightKg / v
}

// RequiresHandling reports whether the item carries the given handling tag.
func (c Cargo) RequiresHandling(tag string) bool {
	for _, t := range c.SpecialHandling {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate rejects physically impossible or malformed cargo before any
// position is considered. All failures wrap ErrCargoInvalid.
func (c Cargo) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty cargo ID", ErrCargoInvalid)
	}
	if !c.Dims.Valid() {
		return fmt.Errorf("%w: %q has non-positive dimensions %.2fx%.2fx%.2f m",
			ErrCargoInvalid, c.ID, c.Dims.Length, c.Dims.Width, c.Dims.Height)
	}
	if c.WeightKg <= 0 {
		return fmt.Errorf("%w: %q has non-positive weight %.1f kg", ErrCargoInvalid, c.ID, c.WeightKg)
	}
	if _, ok := knownCargoTypes[c.Type]; !ok {
		return fmt.Errorf("%w: %q has unknown cargo type %q", ErrCargoInvalid, c.ID, c.Type)
	}
	return nil
}

// CargoRequest asks the coordinator to place one item. PreferredDeck is nil
// when the requester has no preference; that is distinct from preferring
// either deck.
type CargoRequest struct {
	Cargo         Cargo
	PreferredDeck *DeckType
	Priority      Priority
	RequestedBy   string
}

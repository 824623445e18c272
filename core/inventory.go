package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrPositionNotFound    = errors.New("position not found")
	ErrPositionUnavailable = errors.New("position not available")
	ErrPositionReleased    = errors.New("position already available")
	ErrOccupantMismatch    = errors.New("position held by different cargo")
	ErrDuplicatePosition   = errors.New("duplicate position ID")
)

// OccupancyRecorder receives occupancy and load-state changes so a metrics
// backend can export them. Implementations must be safe for concurrent use.
type OccupancyRecorder interface {
	SetOccupancy(available, reserved, occupied int)
	SetLoad(totalWeightKg, cgM float64)
	SetUtilization(totalPct, weightPct float64)
}

// PositionInventory owns every Position record and serialises all occupancy
// mutations behind a single RWMutex, which is enough to make the per-position
// state machine linearizable: of two concurrent claims on one position,
// exactly one observes AVAILABLE.
//
// The inventory also maintains the running occupied weight and moment sums
// under the same lock, so the weight-and-balance layer never reads aggregates
// torn against occupancy. The sums are decimals rather than floats: claiming
// and releasing a position must restore the aggregates exactly, which float
// accumulation does not guarantee over many cycles.
type PositionInventory struct {
	mu sync.RWMutex

	positions map[string]*Position
	order     []string // position IDs in stable lexical order

	maxTotalWeightKg float64

	occupiedWeight decimal.Decimal // kg, OCCUPIED positions only
	occupiedMoment decimal.Decimal // kg*m

	recorder OccupancyRecorder
}

// InventoryOption customises inventory construction.
type InventoryOption func(*PositionInventory)

// WithOccupancyRecorder wires a metrics backend into the inventory.
func WithOccupancyRecorder(r OccupancyRecorder) InventoryOption {
	return func(inv *PositionInventory) { inv.recorder = r }
}

// NewPositionInventory copies the provided layout into inventory-owned
// records. Callers keep no handles into the inventory's state afterwards.
func NewPositionInventory(layout []*Position, limits AircraftLimits, opts ...InventoryOption) (*PositionInventory, error) {
	inv := &PositionInventory{
		positions:        make(map[string]*Position, len(layout)),
		order:            make([]string, 0, len(layout)),
		maxTotalWeightKg: limits.MaxTotalWeightKg,
		occupiedWeight:   decimal.Zero,
		occupiedMoment:   decimal.Zero,
	}

	for _, p := range layout {
		if p == nil || p.ID == "" {
			return nil, fmt.Errorf("%w: nil or unnamed position in layout", ErrPositionNotFound)
		}
		if _, exists := inv.positions[p.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePosition, p.ID)
		}
		owned := p.clone()
		if owned.State == "" {
			owned.State = StateAvailable
		}
		if owned.ArmM == 0 {
			owned.ArmM = owned.Coordinates.X
		}
		inv.positions[p.ID] = &owned
		inv.order = append(inv.order, p.ID)
	}
	sort.Strings(inv.order)

	for _, opt := range opts {
		opt(inv)
	}
	inv.mu.Lock()
	inv.publishLocked()
	inv.mu.Unlock()
	return inv, nil
}

// AvailablePositions returns copies of all AVAILABLE positions in stable id
// order, optionally filtered to one deck. Pass nil for both decks.
func (inv *PositionInventory) AvailablePositions(deck *DeckType) []Position {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Position, 0, len(inv.order))
	for _, id := range inv.order {
		p := inv.positions[id]
		if p.State != StateAvailable {
			continue
		}
		if deck != nil && p.Deck != *deck {
			continue
		}
		out = append(out, p.clone())
	}
	return out
}

// PositionByID returns a copy of the position, or ErrPositionNotFound.
func (inv *PositionInventory) PositionByID(id string) (Position, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	p, ok := inv.positions[id]
	if !ok {
		return Position{}, fmt.Errorf("%w: %q", ErrPositionNotFound, id)
	}
	return p.clone(), nil
}

// Snapshot returns copies of every position in stable id order. Scoring and
// analytics read snapshots so they never block mutations on other positions.
func (inv *PositionInventory) Snapshot() []Position {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Position, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, inv.positions[id].clone())
	}
	return out
}

// Reserve places a soft claim: AVAILABLE -> RESERVED, binding the occupant.
// Any other starting state fails with ErrPositionUnavailable.
func (inv *PositionInventory) Reserve(id string, cargo Cargo) error {
	if err := cargo.Validate(); err != nil {
		return err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	p, ok := inv.positions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPositionNotFound, id)
	}
	if p.State != StateAvailable {
		return fmt.Errorf("%w: %q is %s", ErrPositionUnavailable, id, p.State)
	}

	occ := cargo
	p.State = StateReserved
	p.Occupant = &occ
	inv.publishLocked()
	return nil
}

// Occupy commits cargo to a position: RESERVED -> OCCUPIED for the same
// cargo, or AVAILABLE -> OCCUPIED directly. Occupying a position already
// OCCUPIED by the same cargo is a no-op; any other holder is a conflict.
func (inv *PositionInventory) Occupy(id string, cargo Cargo) error {
	if err := cargo.Validate(); err != nil {
		return err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	p, ok := inv.positions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPositionNotFound, id)
	}

	switch p.State {
	case StateOccupied:
		if p.Occupant != nil && p.Occupant.ID == cargo.ID {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrOccupantMismatch, id)
	case StateReserved:
		if p.Occupant == nil || p.Occupant.ID != cargo.ID {
			return fmt.Errorf("%w: %q", ErrOccupantMismatch, id)
		}
	case StateAvailable:
		// Direct occupation without a prior reservation is permitted.
	default:
		return fmt.Errorf("%w: %q in state %s", ErrPositionUnavailable, id, p.State)
	}

	occ := cargo
	p.State = StateOccupied
	p.Occupant = &occ

	w := decimal.NewFromFloat(cargo.WeightKg)
	inv.occupiedWeight = inv.occupiedWeight.Add(w)
	inv.occupiedMoment = inv.occupiedMoment.Add(w.Mul(decimal.NewFromFloat(p.ArmM)))
	inv.publishLocked()
	return nil
}

// Release returns a position to AVAILABLE and clears the occupant. Releasing
// an already-AVAILABLE position fails with ErrPositionReleased but leaves the
// inventory untouched; callers may treat that as a benign no-op.
func (inv *PositionInventory) Release(id string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	p, ok := inv.positions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPositionNotFound, id)
	}
	if p.State == StateAvailable {
		return fmt.Errorf("%w: %q", ErrPositionReleased, id)
	}

	if p.State == StateOccupied && p.Occupant != nil {
		w := decimal.NewFromFloat(p.Occupant.WeightKg)
		inv.occupiedWeight = inv.occupiedWeight.Sub(w)
		inv.occupiedMoment = inv.occupiedMoment.Sub(w.Mul(decimal.NewFromFloat(p.ArmM)))
	}

	p.State = StateAvailable
	p.Occupant = nil
	inv.publishLocked()
	return nil
}

// OccupiedLoad returns the aggregate occupied weight and its CG. loaded is
// false when nothing is occupied; the weight-and-balance layer substitutes
// the aircraft's empty-weight CG in that case.
func (inv *PositionInventory) OccupiedLoad() (weightKg, cgM float64, loaded bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.loadLocked()
}

func (inv *PositionInventory) loadLocked() (weightKg, cgM float64, loaded bool) {
	if inv.occupiedWeight.IsZero() {
		return 0, 0, false
	}
	w := inv.occupiedWeight.InexactFloat64()
	cg := inv.occupiedMoment.Div(inv.occupiedWeight).InexactFloat64()
	return w, cg, true
}

// UtilizationMetrics reports position and weight utilization. A RESERVED
// position counts as utilized: it cannot accept other cargo.
type UtilizationMetrics struct {
	TotalUtilizationPct     float64
	LowerDeckUtilizationPct float64
	MainDeckUtilizationPct  float64
	WeightUtilizationPct    float64
	AvailablePositions      int
	ReservedPositions       int
	OccupiedPositions       int
	TotalPositions          int
}

// UtilizationMetrics computes current utilization in a single O(n) pass.
func (inv *PositionInventory) UtilizationMetrics() UtilizationMetrics {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.metricsLocked()
}

func (inv *PositionInventory) metricsLocked() UtilizationMetrics {
	var m UtilizationMetrics
	var lowerTotal, lowerUsed, mainTotal, mainUsed int

	for _, p := range inv.positions {
		m.TotalPositions++
		switch p.Deck {
		case LowerDeck:
			lowerTotal++
		case MainDeck:
			mainTotal++
		}
		switch p.State {
		case StateAvailable:
			m.AvailablePositions++
		case StateReserved:
			m.ReservedPositions++
		case StateOccupied:
			m.OccupiedPositions++
		}
		if p.State != StateAvailable {
			switch p.Deck {
			case LowerDeck:
				lowerUsed++
			case MainDeck:
				mainUsed++
			}
		}
	}

	used := m.ReservedPositions + m.OccupiedPositions
	if m.TotalPositions > 0 {
		m.TotalUtilizationPct = 100 * float64(used) / float64(m.TotalPositions)
	}
	if lowerTotal > 0 {
		m.LowerDeckUtilizationPct = 100 * float64(lowerUsed) / float64(lowerTotal)
	}
	if mainTotal > 0 {
		m.MainDeckUtilizationPct = 100 * float64(mainUsed) / float64(mainTotal)
	}
	if inv.maxTotalWeightKg > 0 {
		m.WeightUtilizationPct = 100 * inv.occupiedWeight.InexactFloat64() / inv.maxTotalWeightKg
	}
	return m
}

// MaxEnvelope returns the largest per-axis position envelope and the largest
// single-position weight limit. Cargo exceeding this envelope in every
// orientation cannot be loaded anywhere, regardless of occupancy.
func (inv *PositionInventory) MaxEnvelope() (Dimensions, float64) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var env Dimensions
	var maxW float64
	for _, p := range inv.positions {
		if p.MaxDims.Length > env.Length {
			env.Length = p.MaxDims.Length
		}
		if p.MaxDims.Width > env.Width {
			env.Width = p.MaxDims.Width
		}
		if p.MaxDims.Height > env.Height {
			env.Height = p.MaxDims.Height
		}
		if p.MaxWeightKg > maxW {
			maxW = p.MaxWeightKg
		}
	}
	return env, maxW
}

// publishLocked pushes current occupancy to the metrics recorder.
//
// NOTE: caller must hold inv.mu (write lock is fine, read lock is not: the
// recorder push must observe the same state the mutation produced).
func (inv *PositionInventory) publishLocked() {
	if inv.recorder == nil {
		return
	}
	m := inv.metricsLocked()
	inv.recorder.SetOccupancy(m.AvailablePositions, m.ReservedPositions, m.OccupiedPositions)

	w, cg, _ := inv.loadLocked()
	inv.recorder.SetLoad(w, cg)
	inv.recorder.SetUtilization(m.TotalUtilizationPct, m.WeightUtilizationPct)
}

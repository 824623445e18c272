package core

// DeckType identifies one of the two cargo compartments. The string values
// match the wire vocabulary used by callers ("lower_deck" / "main_deck").
type DeckType string

const (
	LowerDeck DeckType = "lower_deck"
	MainDeck  DeckType = "main_deck"
)

// OccupancyState is the per-position slot of the reservation state machine:
//
//	AVAILABLE -> RESERVED -> OCCUPIED -> AVAILABLE
//
// with AVAILABLE -> OCCUPIED permitted directly. There is no transition from
// OCCUPIED back to RESERVED.
type OccupancyState string

const (
	StateAvailable OccupancyState = "AVAILABLE"
	StateReserved  OccupancyState = "RESERVED"
	StateOccupied  OccupancyState = "OCCUPIED"
)

// Position is one discrete load position aboard the aircraft. The inventory
// exclusively owns all Position records; callers only ever see copies, so a
// stale copy can never be used to mutate occupancy out from under the lock.
type Position struct {
	// ID encodes deck, row and side, e.g. "LD-03-R" or "MD-11-L".
	ID   string
	Deck DeckType

	// Coordinates locate the position floor point in the body frame. X is
	// the longitudinal station and doubles as the default moment arm.
	Coordinates Point3

	// MaxDims is the usable envelope; MaxWeightKg the structural limit of
	// the floor locks at this station.
	MaxDims     Dimensions
	MaxWeightKg float64

	// ArmM is the moment arm used in CG computation, normally equal to
	// Coordinates.X.
	ArmM float64

	// Tiered positions sit in a stacked hold section; only stackable cargo
	// may go there.
	Tiered bool

	// HighVibration marks stations near the engines and empennage where
	// fragile cargo scores poorly.
	HighVibration bool

	// SupportedHandling lists the special-handling tags this position can
	// satisfy.
	SupportedHandling []string

	State    OccupancyState
	Occupant *Cargo
}

// SupportsHandling reports whether the position can satisfy a handling tag.
func (p Position) SupportsHandling(tag string) bool {
	for _, t := range p.SupportedHandling {
		if t == tag {
			return true
		}
	}
	return false
}

// clone returns a deep copy so snapshots never alias inventory-owned state.
func (p *Position) clone() Position {
	cp := *p
	if p.Occupant != nil {
		occ := *p.Occupant
		cp.Occupant = &occ
	}
	if p.SupportedHandling != nil {
		cp.SupportedHandling = append([]string(nil), p.SupportedHandling...)
	}
	return cp
}

package core

import (
	"fmt"
	"sort"
)

// typeDeckAffinity maps each cargo type to a per-deck suitability in [0,1].
// The table is the closed-enumeration replacement for per-type dispatch:
// electronics and perishables sit better in the climate-stable lower holds,
// machinery and vehicles belong on the reinforced main deck, and general
// freight is indifferent.
var typeDeckAffinity = map[CargoType]map[DeckType]float64{
	CargoElectronics:    {LowerDeck: 0.9, MainDeck: 0.6},
	CargoPerishables:    {LowerDeck: 1.0, MainDeck: 0.4},
	CargoTextiles:       {LowerDeck: 0.7, MainDeck: 0.7},
	CargoMachinery:      {LowerDeck: 0.3, MainDeck: 0.9},
	CargoAutomotive:     {LowerDeck: 0.4, MainDeck: 0.9},
	CargoDangerousGoods: {LowerDeck: 0.6, MainDeck: 0.6},
	CargoGeneral:        {LowerDeck: 0.7, MainDeck: 0.7},
}

// fragileOnVibrationScore is the fragility factor applied when fragile cargo
// lands on a high-vibration station. Zero would be a hard reject; a small
// positive value keeps such placements legal but ranked last.
const fragileOnVibrationScore = 0.2

// ScoredPosition pairs a candidate position with its fit score.
type ScoredPosition struct {
	Position Position
	Score    float64
}

// FitScorer ranks candidate positions for a cargo item. Scoring is a pure
// function of the cargo, the position and the fixed configuration, so equal
// inputs always produce equal scores.
type FitScorer struct {
	inv *PositionInventory
	cfg Config
}

// NewFitScorer builds a scorer over the given inventory.
func NewFitScorer(inv *PositionInventory, cfg Config) *FitScorer {
	return &FitScorer{inv: inv, cfg: cfg}
}

// Score returns the composite fit score in [0,1] for placing cargo at the
// position, or 0 when the placement is infeasible. prefDeck may be nil.
func (s *FitScorer) Score(cargo Cargo, prefDeck *DeckType, pos Position) float64 {
	score, _ := s.ScoreDetail(cargo, prefDeck, pos)
	return score
}

// ScoreDetail is Score plus the ordered reasoning strings explaining each
// component, suitable for surfacing to a load planner verbatim.
func (s *FitScorer) ScoreDetail(cargo Cargo, prefDeck *DeckType, pos Position) (float64, []string) {
	var reasons []string

	// 1) Hard dimensional fit, trying every permitted orientation.
	oriented, ok := s.fitOrientation(cargo, pos)
	if !ok {
		return 0, append(reasons, fmt.Sprintf(
			"infeasible: cargo %.2fx%.2fx%.2f m exceeds position envelope %.2fx%.2fx%.2f m",
			cargo.Dims.Length, cargo.Dims.Width, cargo.Dims.Height,
			pos.MaxDims.Length, pos.MaxDims.Width, pos.MaxDims.Height))
	}

	// 2) Hard stack-height limit for the deck.
	if limit := s.stackHeightLimit(pos.Deck); oriented.Height > limit {
		return 0, append(reasons, fmt.Sprintf(
			"infeasible: height %.2f m exceeds %s stack limit %.2f m", oriented.Height, pos.Deck, limit))
	}

	// 3) Hard structural weight limit.
	if cargo.WeightKg > pos.MaxWeightKg {
		return 0, append(reasons, fmt.Sprintf(
			"infeasible: weight %.0f kg exceeds position limit %.0f kg", cargo.WeightKg, pos.MaxWeightKg))
	}

	// 4) Non-stackable cargo cannot go into a tiered hold section.
	if pos.Tiered && !cargo.Stackable {
		return 0, append(reasons, "infeasible: non-stackable cargo in tiered hold section")
	}

	// 5) Every required special-handling tag must be supported.
	for _, tag := range cargo.SpecialHandling {
		if !pos.SupportsHandling(tag) {
			return 0, append(reasons, fmt.Sprintf("infeasible: position lacks %q handling", tag))
		}
	}

	// Soft factors, each normalised to [0,1].
	volScore := cargo.Volume() / pos.MaxDims.Volume()
	if volScore > 1 {
		volScore = 1
	}
	reasons = append(reasons, fmt.Sprintf(
		"volumetric fit %.2f (%.2f of %.2f m3 usable)", volScore, cargo.Volume(), pos.MaxDims.Volume()))

	weightScore := 1 - cargo.WeightKg/pos.MaxWeightKg
	reasons = append(reasons, fmt.Sprintf(
		"weight margin %.2f (%.0f of %.0f kg)", weightScore, cargo.WeightKg, pos.MaxWeightKg))

	deckScore := 0.5
	switch {
	case prefDeck == nil:
		reasons = append(reasons, "no deck preference")
	case *prefDeck == pos.Deck:
		deckScore = 1.0
		reasons = append(reasons, fmt.Sprintf("preferred deck match (%s)", pos.Deck))
	default:
		deckScore = 0.0
		reasons = append(reasons, fmt.Sprintf("off-preference deck (%s wanted, %s offered)", *prefDeck, pos.Deck))
	}

	typeScore := 0.5
	if byDeck, ok := typeDeckAffinity[cargo.Type]; ok {
		typeScore = byDeck[pos.Deck]
	}
	reasons = append(reasons, fmt.Sprintf("type affinity %.2f for %s on %s", typeScore, cargo.Type, pos.Deck))

	fragScore := 1.0
	if cargo.Fragile {
		if pos.HighVibration {
			fragScore = fragileOnVibrationScore
			reasons = append(reasons, "fragile cargo on high-vibration station")
		} else {
			reasons = append(reasons, "fragile cargo on low-vibration station")
		}
	}

	w := s.cfg.Scoring
	composite := (w.VolumetricFit*volScore +
		w.WeightMargin*weightScore +
		w.DeckPreference*deckScore +
		w.TypeAffinity*typeScore +
		w.Fragility*fragScore) / w.total()

	// A feasible placement never reports exactly zero, so callers can use
	// score == 0 as the infeasibility marker.
	if composite <= 0 {
		composite = 0.01
	}
	return composite, reasons
}

// FindBestPositions scores every AVAILABLE position (on the preferred deck
// when one is set, otherwise on both decks), discards infeasible ones, and
// returns the top maxResults ordered by score descending. Ties break on
// ascending position id so results are deterministic.
func (s *FitScorer) FindBestPositions(cargo Cargo, prefDeck *DeckType, maxResults int) []ScoredPosition {
	candidates := s.inv.AvailablePositions(prefDeck)

	scored := make([]ScoredPosition, 0, len(candidates))
	for _, pos := range candidates {
		if sc := s.Score(cargo, prefDeck, pos); sc > 0 {
			scored = append(scored, ScoredPosition{Position: pos, Score: sc})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Position.ID < scored[j].Position.ID
	})

	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

// fitOrientation returns the orientation in which the cargo fits the
// position envelope, preferring the as-declared orientation.
func (s *FitScorer) fitOrientation(cargo Cargo, pos Position) (Dimensions, bool) {
	for _, o := range cargo.Dims.Orientations(cargo.Tiltable) {
		if o.FitsWithin(pos.MaxDims) {
			return o, true
		}
	}
	return Dimensions{}, false
}

// stackHeightLimit returns the deck's stack ceiling from configuration.
func (s *FitScorer) stackHeightLimit(deck DeckType) float64 {
	if deck == MainDeck {
		return s.cfg.Limits.MainDeckStackHeightM
	}
	return s.cfg.Limits.LowerDeckStackHeightM
}

package core

import (
	"errors"
	"sync"
	"testing"
)

func testCargo(id string, weightKg float64) Cargo {
	return Cargo{
		ID:        id,
		Dims:      Dimensions{Length: 1.0, Width: 1.0, Height: 1.0},
		WeightKg:  weightKg,
		Stackable: true,
		Type:      CargoGeneral,
	}
}

func newTestInventory(t *testing.T) *PositionInventory {
	t.Helper()
	inv, err := NewPositionInventory(DefaultLayout(), DefaultConfig().Limits)
	if err != nil {
		t.Fatalf("NewPositionInventory: %v", err)
	}
	return inv
}

func TestInventoryRejectsDuplicateIDs(t *testing.T) {
	layout := DefaultLayout()
	layout = append(layout, &Position{ID: layout[0].ID, Deck: LowerDeck})
	if _, err := NewPositionInventory(layout, DefaultConfig().Limits); !errors.Is(err, ErrDuplicatePosition) {
		t.Fatalf("err = %v, want ErrDuplicatePosition", err)
	}
}

func TestReserveOccupyReleaseLifecycle(t *testing.T) {
	inv := newTestInventory(t)
	cargo := testCargo("c1", 400)

	if err := inv.Reserve("LD-01-L", cargo); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	p, err := inv.PositionByID("LD-01-L")
	if err != nil {
		t.Fatalf("PositionByID: %v", err)
	}
	if p.State != StateReserved || p.Occupant == nil || p.Occupant.ID != "c1" {
		t.Fatalf("after Reserve: state=%s occupant=%v", p.State, p.Occupant)
	}

	// A reservation has no weight impact.
	if _, _, loaded := inv.OccupiedLoad(); loaded {
		t.Fatalf("reserved position contributed to the load ledger")
	}

	if err := inv.Occupy("LD-01-L", cargo); err != nil {
		t.Fatalf("Occupy: %v", err)
	}
	w, cg, loaded := inv.OccupiedLoad()
	if !loaded || w != 400 {
		t.Fatalf("OccupiedLoad = %v, %v, %v; want 400 kg loaded", w, cg, loaded)
	}
	if cg != 14.0 {
		t.Fatalf("cg = %v, want the position arm 14.0", cg)
	}

	if err := inv.Release("LD-01-L"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	p, _ = inv.PositionByID("LD-01-L")
	if p.State != StateAvailable || p.Occupant != nil {
		t.Fatalf("after Release: state=%s occupant=%v", p.State, p.Occupant)
	}
	if err := inv.Release("LD-01-L"); !errors.Is(err, ErrPositionReleased) {
		t.Fatalf("double Release err = %v, want ErrPositionReleased", err)
	}
}

func TestReserveRequiresAvailable(t *testing.T) {
	inv := newTestInventory(t)
	if err := inv.Reserve("LD-01-L", testCargo("c1", 100)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := inv.Reserve("LD-01-L", testCargo("c2", 100)); !errors.Is(err, ErrPositionUnavailable) {
		t.Fatalf("second Reserve err = %v, want ErrPositionUnavailable", err)
	}

	if err := inv.Occupy("LD-02-L", testCargo("c3", 100)); err != nil {
		t.Fatalf("direct Occupy: %v", err)
	}
	// No transition from OCCUPIED back to RESERVED.
	if err := inv.Reserve("LD-02-L", testCargo("c3", 100)); !errors.Is(err, ErrPositionUnavailable) {
		t.Fatalf("Reserve of occupied err = %v, want ErrPositionUnavailable", err)
	}
}

func TestOccupyIdempotentForSameCargo(t *testing.T) {
	inv := newTestInventory(t)
	cargo := testCargo("c1", 250)

	if err := inv.Occupy("MD-01-L", cargo); err != nil {
		t.Fatalf("Occupy: %v", err)
	}
	if err := inv.Occupy("MD-01-L", cargo); err != nil {
		t.Fatalf("repeat Occupy of same cargo: %v", err)
	}
	// The no-op repeat must not double-count weight.
	if w, _, _ := inv.OccupiedLoad(); w != 250 {
		t.Fatalf("weight after repeat Occupy = %v, want 250", w)
	}

	if err := inv.Occupy("MD-01-L", testCargo("c2", 250)); !errors.Is(err, ErrOccupantMismatch) {
		t.Fatalf("Occupy by different cargo err = %v, want ErrOccupantMismatch", err)
	}
}

func TestOccupyReservedByOtherCargoConflicts(t *testing.T) {
	inv := newTestInventory(t)
	if err := inv.Reserve("LD-03-R", testCargo("holder", 100)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := inv.Occupy("LD-03-R", testCargo("intruder", 100)); !errors.Is(err, ErrOccupantMismatch) {
		t.Fatalf("Occupy err = %v, want ErrOccupantMismatch", err)
	}
}

func TestUnknownPositionErrors(t *testing.T) {
	inv := newTestInventory(t)
	if _, err := inv.PositionByID("LD-99-X"); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("PositionByID err = %v, want ErrPositionNotFound", err)
	}
	if err := inv.Reserve("LD-99-X", testCargo("c1", 100)); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("Reserve err = %v, want ErrPositionNotFound", err)
	}
	if err := inv.Release("LD-99-X"); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("Release err = %v, want ErrPositionNotFound", err)
	}
}

func TestLoadLedgerRoundTripIsExact(t *testing.T) {
	inv := newTestInventory(t)

	// Weights chosen to accumulate float error under naive summation.
	claims := map[string]float64{
		"LD-01-L": 123.45,
		"LD-02-R": 678.90,
		"MD-03-L": 1111.11,
		"MD-07-R": 0.07,
	}
	for id, w := range claims {
		if err := inv.Occupy(id, testCargo("c-"+id, w)); err != nil {
			t.Fatalf("Occupy %s: %v", id, err)
		}
	}
	for id := range claims {
		if err := inv.Release(id); err != nil {
			t.Fatalf("Release %s: %v", id, err)
		}
	}

	w, cg, loaded := inv.OccupiedLoad()
	if loaded || w != 0 || cg != 0 {
		t.Fatalf("after full release: weight=%v cg=%v loaded=%v, want exact zero", w, cg, loaded)
	}
	if m := inv.UtilizationMetrics(); m.WeightUtilizationPct != 0 {
		t.Fatalf("weight utilization after full release = %v, want exactly 0", m.WeightUtilizationPct)
	}
}

func TestAvailablePositionsDeckFilter(t *testing.T) {
	inv := newTestInventory(t)
	if err := inv.Occupy("LD-01-L", testCargo("c1", 100)); err != nil {
		t.Fatalf("Occupy: %v", err)
	}

	lower := LowerDeck
	got := inv.AvailablePositions(&lower)
	if len(got) != 2*LowerDeckRows-1 {
		t.Fatalf("lower-deck available = %d, want %d", len(got), 2*LowerDeckRows-1)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("available positions not in stable id order: %s before %s", got[i-1].ID, got[i].ID)
		}
	}

	all := inv.AvailablePositions(nil)
	if len(all) != TotalPositionCount-1 {
		t.Fatalf("available on both decks = %d, want %d", len(all), TotalPositionCount-1)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	inv := newTestInventory(t)
	snap := inv.Snapshot()
	snap[0].State = StateOccupied
	snap[0].Occupant = &Cargo{ID: "phantom"}

	p, err := inv.PositionByID(snap[0].ID)
	if err != nil {
		t.Fatalf("PositionByID: %v", err)
	}
	if p.State != StateAvailable || p.Occupant != nil {
		t.Fatalf("mutating a snapshot leaked into the inventory: %+v", p)
	}
}

func TestUtilizationCountsReservedAndOccupied(t *testing.T) {
	inv := newTestInventory(t)
	if err := inv.Reserve("LD-01-L", testCargo("c1", 500)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := inv.Occupy("MD-01-L", testCargo("c2", 1000)); err != nil {
		t.Fatalf("Occupy: %v", err)
	}

	m := inv.UtilizationMetrics()
	if m.TotalPositions != TotalPositionCount {
		t.Fatalf("TotalPositions = %d, want %d", m.TotalPositions, TotalPositionCount)
	}
	if m.ReservedPositions != 1 || m.OccupiedPositions != 1 {
		t.Fatalf("reserved=%d occupied=%d, want 1 and 1", m.ReservedPositions, m.OccupiedPositions)
	}
	want := 100 * 2.0 / float64(TotalPositionCount)
	if m.TotalUtilizationPct != want {
		t.Fatalf("TotalUtilizationPct = %v, want %v", m.TotalUtilizationPct, want)
	}
	// Only the occupied position's weight counts.
	wantWeight := 100 * 1000.0 / DefaultConfig().Limits.MaxTotalWeightKg
	if m.WeightUtilizationPct != wantWeight {
		t.Fatalf("WeightUtilizationPct = %v, want %v", m.WeightUtilizationPct, wantWeight)
	}
}

func TestConcurrentReserveSinglePosition(t *testing.T) {
	inv := newTestInventory(t)

	const claimants = 32
	var wg sync.WaitGroup
	errs := make([]error, claimants)

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = inv.Reserve("MD-08-L", testCargo("claimant", 100))
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrPositionUnavailable):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != claimants-1 {
		t.Fatalf("wins=%d losses=%d, want exactly one winner", wins, losses)
	}
}

func TestMaxEnvelope(t *testing.T) {
	inv := newTestInventory(t)
	env, maxW := inv.MaxEnvelope()
	if env != (Dimensions{Length: 3.1, Width: 2.4, Height: 2.9}) {
		t.Fatalf("MaxEnvelope dims = %v", env)
	}
	if maxW != 2500 {
		t.Fatalf("MaxEnvelope weight = %v, want 2500", maxW)
	}
}

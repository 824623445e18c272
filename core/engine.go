package core

import (
	"context"
	"fmt"

	"github.com/skyfreight/loadmaster/internal/logging"
)

// ReservationRecorder observes reserve/occupy/release outcomes.
type ReservationRecorder interface {
	CountReservation(op, outcome string)
}

// EngineMetrics is the full metrics surface an Engine can publish to. A
// prometheus-backed collector satisfies all four recorder interfaces.
type EngineMetrics interface {
	OccupancyRecorder
	AlertRecorder
	AssessmentRecorder
	ReservationRecorder
}

// Engine is the top-level facade: one call builds the position inventory,
// fit scorer, weight-and-balance engine, capacity monitor and assessment
// coordinator over a shared layout.
type Engine struct {
	inv         *PositionInventory
	scorer      *FitScorer
	balance     *WeightBalanceEngine
	monitor     *CapacityMonitor
	coordinator *AssessmentCoordinator

	log          logging.Logger
	reservations ReservationRecorder
}

// EngineOption customises engine construction.
type EngineOption func(*engineConfig)

type engineConfig struct {
	layout  []*Position
	log     logging.Logger
	metrics EngineMetrics
}

// WithLayout replaces the default 56-position freighter layout.
func WithLayout(layout []*Position) EngineOption {
	return func(ec *engineConfig) { ec.layout = layout }
}

// WithEngineLogger attaches a structured logger to the engine and all
// components built under it.
func WithEngineLogger(l logging.Logger) EngineOption {
	return func(ec *engineConfig) {
		if l != nil {
			ec.log = l
		}
	}
}

// WithEngineMetrics wires a metrics collector into every component.
func WithEngineMetrics(m EngineMetrics) EngineOption {
	return func(ec *engineConfig) { ec.metrics = m }
}

// NewEngine builds a fully wired engine for the given configuration.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ec := engineConfig{
		layout: DefaultLayout(),
		log:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(&ec)
	}

	var invOpts []InventoryOption
	var monOpts []MonitorOption
	var coordOpts []CoordinatorOption
	if ec.metrics != nil {
		invOpts = append(invOpts, WithOccupancyRecorder(ec.metrics))
		monOpts = append(monOpts, WithAlertRecorder(ec.metrics))
		coordOpts = append(coordOpts, WithAssessmentRecorder(ec.metrics))
	}
	coordOpts = append(coordOpts, WithLogger(ec.log))

	inv, err := NewPositionInventory(ec.layout, cfg.Limits, invOpts...)
	if err != nil {
		return nil, fmt.Errorf("build inventory: %w", err)
	}
	scorer := NewFitScorer(inv, cfg)
	balance := NewWeightBalanceEngine(inv, cfg.Limits)
	monitor := NewCapacityMonitor(inv, cfg, monOpts...)

	e := &Engine{
		inv:         inv,
		scorer:      scorer,
		balance:     balance,
		monitor:     monitor,
		coordinator: NewAssessmentCoordinator(inv, scorer, balance, monitor, cfg, coordOpts...),
		log:         ec.log,
	}
	if ec.metrics != nil {
		e.reservations = ec.metrics
	}
	return e, nil
}

// Inventory exposes the underlying position inventory.
func (e *Engine) Inventory() *PositionInventory { return e.inv }

// Balance exposes the weight-and-balance engine.
func (e *Engine) Balance() *WeightBalanceEngine { return e.balance }

// Monitor exposes the capacity monitor.
func (e *Engine) Monitor() *CapacityMonitor { return e.monitor }

// Coordinator exposes the assessment coordinator for constraint-level calls.
func (e *Engine) Coordinator() *AssessmentCoordinator { return e.coordinator }

// AssessCargoPlacement evaluates a cargo request without mutating any state.
func (e *Engine) AssessCargoPlacement(ctx context.Context, req CargoRequest) AssessmentResult {
	return e.coordinator.AssessCargoPlacement(ctx, req)
}

// Reserve transitions a position to RESERVED for the given cargo.
func (e *Engine) Reserve(ctx context.Context, positionID string, cargo Cargo) error {
	err := e.inv.Reserve(positionID, cargo)
	e.countReservation(ctx, "reserve", positionID, cargo.ID, err)
	return err
}

// Occupy transitions a position to OCCUPIED and commits its weight into the
// load ledger.
func (e *Engine) Occupy(ctx context.Context, positionID string, cargo Cargo) error {
	err := e.inv.Occupy(positionID, cargo)
	e.countReservation(ctx, "occupy", positionID, cargo.ID, err)
	return err
}

// Release frees a position and, if it was occupied, removes its weight from
// the load ledger.
func (e *Engine) Release(ctx context.Context, positionID string) error {
	err := e.inv.Release(positionID)
	e.countReservation(ctx, "release", positionID, "", err)
	return err
}

// UtilizationMetrics reports the current capacity picture.
func (e *Engine) UtilizationMetrics() UtilizationMetrics {
	return e.inv.UtilizationMetrics()
}

// BalanceStatus reports current total weight, CG and margin state.
func (e *Engine) BalanceStatus() BalanceStatus {
	return e.balance.Status()
}

// AlertSummary reports active alerts grouped by severity.
func (e *Engine) AlertSummary() AlertSummary {
	return e.monitor.AlertSummary()
}

func (e *Engine) countReservation(ctx context.Context, op, positionID, cargoID string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		e.log.Warn(ctx, op+" failed",
			logging.String("position_id", positionID),
			logging.String("cargo_id", cargoID),
			logging.String("error", err.Error()))
	} else {
		e.log.Debug(ctx, op+" applied",
			logging.String("position_id", positionID),
			logging.String("cargo_id", cargoID))
	}
	if e.reservations != nil {
		e.reservations.CountReservation(op, outcome)
	}
}

package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skyfreight/loadmaster/internal/logging"
)

// PositionRecommendation is one ranked, explained candidate placement.
type PositionRecommendation struct {
	Position             Position
	FitScore             float64
	Reasoning            []string
	ConstraintsSatisfied bool
	Impact               WeightBalanceImpact
}

// AssessmentResult is the full answer to a cargo placement request. Domain
// failures (impossible cargo, no feasible position) are reported in-band via
// AssessmentSuccessful and ErrorMessage, matching the caller contract.
type AssessmentResult struct {
	AssessmentSuccessful bool
	CargoID              string
	RecommendedPositions []PositionRecommendation
	CapacityUtilization  UtilizationMetrics
	WeightBalanceImpact  *WeightBalanceImpact
	Alerts               []Alert
	ErrorMessage         string
}

// ConstraintFinding collects one constraint family's results.
type ConstraintFinding struct {
	Violations []string
	Warnings   []string
}

// ConstraintReport is the merged outcome of the independent spatial, weight
// and handling checks for a single cargo/position pairing.
type ConstraintReport struct {
	OverallValid bool
	Severity     AlertSeverity
	Spatial      ConstraintFinding
	Weight       ConstraintFinding
	Handling     ConstraintFinding
}

// ViolationResolution says what to do about a rejected pairing: accept it,
// or reject with (possibly empty) compliant alternatives.
type ViolationResolution struct {
	// Action is "accept", "suggest_alternative" or "reject".
	Action       string
	Alternatives []PositionRecommendation
}

// AssessmentRecorder observes assessment outcomes for metrics export.
type AssessmentRecorder interface {
	CountAssessment(outcome string, seconds float64)
}

// AssessmentCoordinator orchestrates fit scoring, weight-and-balance checks
// and constraint validation into ranked recommendations. It mutates nothing;
// committing a recommendation is the caller's explicit reserve/occupy call.
type AssessmentCoordinator struct {
	inv     *PositionInventory
	scorer  *FitScorer
	balance *WeightBalanceEngine
	monitor *CapacityMonitor
	cfg     Config

	log      logging.Logger
	tracer   trace.Tracer
	recorder AssessmentRecorder
}

// CoordinatorOption customises coordinator construction.
type CoordinatorOption func(*AssessmentCoordinator)

// WithLogger attaches a structured logger; the default drops all logs.
func WithLogger(l logging.Logger) CoordinatorOption {
	return func(c *AssessmentCoordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithAssessmentRecorder wires a metrics backend into the coordinator.
func WithAssessmentRecorder(r AssessmentRecorder) CoordinatorOption {
	return func(c *AssessmentCoordinator) { c.recorder = r }
}

// NewAssessmentCoordinator wires the coordinator over already-built
// components.
func NewAssessmentCoordinator(inv *PositionInventory, scorer *FitScorer, balance *WeightBalanceEngine,
	monitor *CapacityMonitor, cfg Config, opts ...CoordinatorOption) *AssessmentCoordinator {
	c := &AssessmentCoordinator{
		inv:     inv,
		scorer:  scorer,
		balance: balance,
		monitor: monitor,
		cfg:     cfg,
		log:     logging.Noop(),
		tracer:  otel.Tracer("loadmaster/core"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AssessCargoPlacement is the primary entry point: it validates the cargo,
// ranks candidate positions, applies weight-and-balance limits per
// candidate, and returns explained recommendations plus current capacity
// state and alerts.
func (c *AssessmentCoordinator) AssessCargoPlacement(ctx context.Context, req CargoRequest) AssessmentResult {
	start := time.Now()
	ctx, log := logging.WithRequestLogger(ctx, c.log)

	ctx, span := c.tracer.Start(ctx, "AssessCargoPlacement", trace.WithAttributes(
		attribute.String("cargo.id", req.Cargo.ID),
		attribute.String("cargo.type", string(req.Cargo.Type)),
		attribute.Float64("cargo.weight_kg", req.Cargo.WeightKg),
		attribute.String("request.priority", string(req.Priority)),
		attribute.String("request.requested_by", req.RequestedBy),
	))
	defer span.End()

	result := c.assess(ctx, log, req)

	outcome := "rejected"
	if result.AssessmentSuccessful {
		outcome = "success"
	}
	span.SetAttributes(
		attribute.String("assessment.outcome", outcome),
		attribute.Int("assessment.recommendations", len(result.RecommendedPositions)),
	)
	if c.recorder != nil {
		c.recorder.CountAssessment(outcome, time.Since(start).Seconds())
	}
	return result
}

func (c *AssessmentCoordinator) assess(ctx context.Context, log logging.Logger, req CargoRequest) AssessmentResult {
	cargo := req.Cargo
	result := AssessmentResult{CargoID: cargo.ID}

	// 1) Reject malformed or absolutely unloadable cargo before touching
	// any position.
	if err := cargo.Validate(); err != nil {
		log.Warn(ctx, "cargo rejected by validation", logging.String("error", err.Error()))
		return c.failed(result, err.Error())
	}
	if msg := c.absoluteLimitCheck(cargo); msg != "" {
		log.Warn(ctx, "cargo exceeds aircraft limits",
			logging.String("cargo_id", cargo.ID), logging.String("reason", msg))
		c.monitor.Record(Alert{
			Severity:         SeverityHigh,
			Type:             AlertConstraintViolation,
			Message:          fmt.Sprintf("cargo %s rejected: %s", cargo.ID, msg),
			SuggestedActions: []string{"split the consignment", "route via surface freight"},
		})
		return c.failed(result, msg)
	}

	// 2) Rank candidate positions by spatial fit.
	candidates := c.scorer.FindBestPositions(cargo, req.PreferredDeck, c.cfg.MaxRecommendations)
	if len(candidates) == 0 {
		msg := fmt.Sprintf("%v: no available position accepts cargo %s", ErrNoFeasiblePosition, cargo.ID)
		log.Info(ctx, "no feasible position", logging.String("cargo_id", cargo.ID))
		return c.failed(result, msg)
	}

	// 3) Weight-and-balance filter per candidate. Candidates that breach
	// limits are dropped unless nothing survives, in which case the least
	// violating one is retained and flagged.
	var compliant, violating []PositionRecommendation
	for _, cand := range candidates {
		_, reasons := c.scorer.ScoreDetail(cargo, req.PreferredDeck, cand.Position)
		impact := c.balance.Impact(cargo, cand.Position)
		rec := PositionRecommendation{
			Position:             cand.Position,
			FitScore:             cand.Score,
			Reasoning:            append(reasons, describeImpact(impact)),
			ConstraintsSatisfied: impact.WithinLimits,
			Impact:               impact,
		}
		if impact.WithinLimits {
			compliant = append(compliant, rec)
		} else {
			violating = append(violating, rec)
		}
	}

	if len(compliant) > 0 {
		result.AssessmentSuccessful = true
		result.RecommendedPositions = compliant
	} else {
		best := leastViolating(violating)
		best.Reasoning = append(best.Reasoning, "retained as least-violating candidate; placement requires override")
		result.RecommendedPositions = []PositionRecommendation{best}
		result.ErrorMessage = fmt.Sprintf("%v: every candidate for cargo %s breaches weight/balance limits", ErrWeightBalance, cargo.ID)
		result.Alerts = append(result.Alerts, Alert{
			Severity:         SeverityCritical,
			Type:             AlertWeightBalance,
			Message:          fmt.Sprintf("cargo %s has no limit-compliant position", cargo.ID),
			SuggestedActions: []string{"offload or relocate existing cargo", "reassess after the next departure"},
		})
		c.monitor.Record(result.Alerts...)
	}

	// 4) Aggregate capacity state and monitor alerts into the response.
	metrics := c.inv.UtilizationMetrics()
	result.CapacityUtilization = metrics
	result.Alerts = append(result.Alerts, c.monitor.MonitorCapacity(metrics)...)
	result.Alerts = append(result.Alerts, c.monitor.WeightBalanceAlerts(c.balance.Status())...)
	if result.Alerts == nil {
		result.Alerts = []Alert{}
	}

	if len(result.RecommendedPositions) > 0 {
		top := result.RecommendedPositions[0].Impact
		result.WeightBalanceImpact = &top
	}

	log.Info(ctx, "assessment complete",
		logging.String("cargo_id", cargo.ID),
		logging.Int("recommendations", len(result.RecommendedPositions)),
		logging.Any("successful", result.AssessmentSuccessful),
	)
	return result
}

// ValidateConstraints runs the spatial, weight and handling constraint
// families independently and merges their findings.
func (c *AssessmentCoordinator) ValidateConstraints(cargo Cargo, pos Position) ConstraintReport {
	var report ConstraintReport

	// Spatial family: envelope fit and deck stack height.
	if !cargo.Dims.FitsWithinAny(pos.MaxDims, cargo.Tiltable) {
		report.Spatial.Violations = append(report.Spatial.Violations, fmt.Sprintf(
			"cargo %.2fx%.2fx%.2f m does not fit envelope %.2fx%.2fx%.2f m in any permitted orientation",
			cargo.Dims.Length, cargo.Dims.Width, cargo.Dims.Height,
			pos.MaxDims.Length, pos.MaxDims.Width, pos.MaxDims.Height))
	} else {
		if oriented, ok := c.scorer.fitOrientation(cargo, pos); ok {
			if limit := c.scorer.stackHeightLimit(pos.Deck); oriented.Height > limit {
				report.Spatial.Violations = append(report.Spatial.Violations, fmt.Sprintf(
					"height %.2f m exceeds %s stack limit %.2f m", oriented.Height, pos.Deck, limit))
			}
		}
		if cargo.Volume() > 0.9*pos.MaxDims.Volume() {
			report.Spatial.Warnings = append(report.Spatial.Warnings,
				"envelope fill above 90%; verify contour clearance")
		}
	}

	// Weight family: structural limit plus aircraft-level impact.
	if cargo.WeightKg > pos.MaxWeightKg {
		report.Weight.Violations = append(report.Weight.Violations, fmt.Sprintf(
			"weight %.0f kg exceeds position limit %.0f kg", cargo.WeightKg, pos.MaxWeightKg))
	} else {
		if impact := c.balance.Impact(cargo, pos); !impact.WithinLimits {
			report.Weight.Violations = append(report.Weight.Violations, impact.LimitBreaches...)
		}
		if cargo.WeightKg > 0.9*pos.MaxWeightKg {
			report.Weight.Warnings = append(report.Weight.Warnings,
				"position weight margin under 10%")
		}
	}

	// Handling family: stacking, special tags, fragility.
	if pos.Tiered && !cargo.Stackable {
		report.Handling.Violations = append(report.Handling.Violations,
			"non-stackable cargo in tiered hold section")
	}
	for _, tag := range cargo.SpecialHandling {
		if !pos.SupportsHandling(tag) {
			report.Handling.Violations = append(report.Handling.Violations,
				fmt.Sprintf("position does not support %q handling", tag))
		}
	}
	if cargo.Fragile && pos.HighVibration {
		report.Handling.Warnings = append(report.Handling.Warnings,
			"fragile cargo on high-vibration station")
	}

	report.OverallValid = len(report.Spatial.Violations) == 0 &&
		len(report.Weight.Violations) == 0 &&
		len(report.Handling.Violations) == 0
	report.Severity = constraintSeverity(report)
	return report
}

// ResolveViolations decides how to respond to a cargo/position pairing. A
// valid pairing is accepted; an invalid one is answered with compliant
// alternatives when any exist.
func (c *AssessmentCoordinator) ResolveViolations(cargo Cargo, pos Position) ViolationResolution {
	report := c.ValidateConstraints(cargo, pos)
	if report.OverallValid {
		return ViolationResolution{Action: "accept"}
	}

	c.monitor.Record(Alert{
		Severity:         report.Severity,
		Type:             AlertConstraintViolation,
		Message:          fmt.Sprintf("cargo %s rejected at position %s", cargo.ID, pos.ID),
		SuggestedActions: []string{"review suggested alternative positions"},
	})

	var alts []PositionRecommendation
	for _, cand := range c.scorer.FindBestPositions(cargo, nil, c.cfg.MaxRecommendations) {
		if cand.Position.ID == pos.ID {
			continue
		}
		if alt := c.ValidateConstraints(cargo, cand.Position); !alt.OverallValid {
			continue
		}
		_, reasons := c.scorer.ScoreDetail(cargo, nil, cand.Position)
		alts = append(alts, PositionRecommendation{
			Position:             cand.Position,
			FitScore:             cand.Score,
			Reasoning:            reasons,
			ConstraintsSatisfied: true,
			Impact:               c.balance.Impact(cargo, cand.Position),
		})
	}

	if len(alts) == 0 {
		return ViolationResolution{Action: "reject"}
	}
	return ViolationResolution{Action: "suggest_alternative", Alternatives: alts}
}

// absoluteLimitCheck returns a rejection message when the cargo cannot be
// loaded anywhere regardless of occupancy, or "" when it can.
func (c *AssessmentCoordinator) absoluteLimitCheck(cargo Cargo) string {
	env, maxPosWeight := c.inv.MaxEnvelope()
	if !cargo.Dims.FitsWithinAny(env, cargo.Tiltable) {
		return fmt.Sprintf("cargo %s (%.2fx%.2fx%.2f m) exceeds the largest position envelope %.2fx%.2fx%.2f m",
			cargo.ID, cargo.Dims.Length, cargo.Dims.Width, cargo.Dims.Height, env.Length, env.Width, env.Height)
	}
	if cargo.WeightKg > maxPosWeight {
		return fmt.Sprintf("cargo %s (%.0f kg) exceeds every position weight limit (max %.0f kg)",
			cargo.ID, cargo.WeightKg, maxPosWeight)
	}
	if cargo.WeightKg > c.cfg.Limits.MaxTotalWeightKg {
		return fmt.Sprintf("cargo %s (%.0f kg) alone exceeds the aircraft weight limit (%.0f kg)",
			cargo.ID, cargo.WeightKg, c.cfg.Limits.MaxTotalWeightKg)
	}
	return ""
}

func (c *AssessmentCoordinator) failed(result AssessmentResult, msg string) AssessmentResult {
	result.AssessmentSuccessful = false
	result.ErrorMessage = msg
	result.CapacityUtilization = c.inv.UtilizationMetrics()
	result.RecommendedPositions = []PositionRecommendation{}
	if result.Alerts == nil {
		result.Alerts = []Alert{}
	}
	return result
}

// leastViolating picks the candidate whose limit breach is smallest: the
// normalised weight overshoot plus the CG distance outside the envelope,
// measured in envelope widths.
func leastViolating(recs []PositionRecommendation) PositionRecommendation {
	best := recs[0]
	bestMag := math.Inf(1)
	for _, rec := range recs {
		if mag := breachMagnitude(rec.Impact); mag < bestMag {
			best = rec
			bestMag = mag
		}
	}
	return best
}

func breachMagnitude(imp WeightBalanceImpact) float64 {
	// The comparison only needs to be monotonic in "how far out of limits",
	// so a unitless sum of relative overshoots is enough.
	var mag float64
	if !imp.WithinLimits {
		mag = float64(len(imp.LimitBreaches)) + math.Abs(imp.CGShiftM)
	}
	return mag
}

func constraintSeverity(r ConstraintReport) AlertSeverity {
	if len(r.Spatial.Violations)+len(r.Weight.Violations)+len(r.Handling.Violations) > 0 {
		return SeverityCritical
	}
	if len(r.Weight.Warnings) > 0 {
		return SeverityHigh
	}
	if len(r.Spatial.Warnings)+len(r.Handling.Warnings) > 0 {
		return SeverityMedium
	}
	return SeverityLow
}

func describeImpact(imp WeightBalanceImpact) string {
	status := "within limits"
	if !imp.WithinLimits {
		status = "breaches limits"
	}
	return fmt.Sprintf("CG %.2f -> %.2f m (shift %+.3f m), total %.0f kg, %s",
		imp.CurrentCG.X, imp.NewCG.X, imp.CGShiftM, imp.NewWeightKg, status)
}

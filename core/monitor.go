package core

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AlertSeverity orders alerts for triage.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "CRITICAL"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityLow      AlertSeverity = "LOW"
)

// AlertType classifies what an alert is about.
type AlertType string

const (
	AlertCapacity            AlertType = "CAPACITY"
	AlertWeightBalance       AlertType = "WEIGHT_BALANCE"
	AlertConstraintViolation AlertType = "CONSTRAINT_VIOLATION"
	AlertOperational         AlertType = "OPERATIONAL"
)

// Alert is a single actionable condition raised by the monitor or the
// coordinator. IDs are unique so the active set is addressable.
type Alert struct {
	ID               string
	Severity         AlertSeverity
	Type             AlertType
	Message          string
	SuggestedActions []string
	RaisedAt         time.Time
}

// AlertSummary aggregates the currently active alerts.
type AlertSummary struct {
	TotalActiveAlerts int
	Critical          int
	High              int
	Medium            int
	Low               int
}

// BalanceAnalysis scores how evenly load is spread across decks and along
// the fuselage. Score is 0-100; higher is better.
type BalanceAnalysis struct {
	Score    float64
	Balanced bool
}

// Opportunity is a load-plan improvement the monitor spotted.
type Opportunity struct {
	Type           string
	Recommendation string
}

// Forecast extrapolates utilization.
type Forecast struct {
	ForecastUtilizationPct float64
	WillExceedCapacity     bool
	Recommendation         string
}

// AlertRecorder counts raised alerts for metrics export.
type AlertRecorder interface {
	CountAlert(severity string)
}

// CapacityMonitor watches inventory utilization, raises severity-tiered
// alerts, and keeps the active-alert registry behind the status queries.
// Safe for concurrent use.
type CapacityMonitor struct {
	mu sync.Mutex

	inv *PositionInventory
	cfg Config

	active  map[string]Alert
	history []utilSample

	recorder AlertRecorder
	now      func() time.Time
}

type utilSample struct {
	at      time.Time
	utilPct float64
}

// MonitorOption customises monitor construction.
type MonitorOption func(*CapacityMonitor)

// WithAlertRecorder wires a metrics backend into the monitor.
func WithAlertRecorder(r AlertRecorder) MonitorOption {
	return func(m *CapacityMonitor) { m.recorder = r }
}

// WithClock overrides the monitor's clock; tests use it to make the
// utilization trend deterministic.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *CapacityMonitor) { m.now = now }
}

// NewCapacityMonitor builds a monitor over the given inventory.
func NewCapacityMonitor(inv *PositionInventory, cfg Config, opts ...MonitorOption) *CapacityMonitor {
	m := &CapacityMonitor{
		inv:    inv,
		cfg:    cfg,
		active: make(map[string]Alert),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MonitorCapacity evaluates utilization against the alert thresholds and
// returns any raised alerts, also recording them as active and appending a
// trend sample for forecasting.
func (m *CapacityMonitor) MonitorCapacity(metrics UtilizationMetrics) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, utilSample{at: m.now(), utilPct: metrics.TotalUtilizationPct})

	var alerts []Alert
	t := m.cfg.Alerts
	switch {
	case metrics.TotalUtilizationPct >= t.CapacityCriticalPct || metrics.WeightUtilizationPct >= t.WeightCriticalPct:
		alerts = append(alerts, m.raiseLocked(SeverityCritical, AlertCapacity,
			fmt.Sprintf("capacity critical: %.1f%% positions, %.1f%% weight",
				metrics.TotalUtilizationPct, metrics.WeightUtilizationPct),
			"suspend non-urgent acceptance", "review held reservations for release"))
	case metrics.TotalUtilizationPct >= t.CapacityHighPct:
		alerts = append(alerts, m.raiseLocked(SeverityHigh, AlertCapacity,
			fmt.Sprintf("capacity high: %.1f%% of positions in use", metrics.TotalUtilizationPct),
			"prioritise urgent cargo", "prepare overflow routing"))
	case metrics.TotalUtilizationPct >= t.CapacityMediumPct:
		alerts = append(alerts, m.raiseLocked(SeverityMedium, AlertCapacity,
			fmt.Sprintf("capacity elevated: %.1f%% of positions in use", metrics.TotalUtilizationPct),
			"monitor booking rate"))
	}
	return alerts
}

// WeightBalanceAlerts maps a balance status into WEIGHT_BALANCE alerts.
// A "normal" status raises nothing.
func (m *CapacityMonitor) WeightBalanceAlerts(status BalanceStatus) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch status.State {
	case "critical":
		return []Alert{m.raiseLocked(SeverityCritical, AlertWeightBalance,
			fmt.Sprintf("weight/balance critical: %.0f kg margin, CG %.2f m", status.WeightMarginKg, status.CGM),
			"stop loading", "redistribute load toward the opposite end of the envelope")}
	case "caution":
		return []Alert{m.raiseLocked(SeverityMedium, AlertWeightBalance,
			fmt.Sprintf("weight/balance caution: %.0f kg margin, CG %.2f m", status.WeightMarginKg, status.CGM),
			"prefer positions that move CG toward mid-envelope")}
	default:
		return nil
	}
}

// Record adds externally raised alerts (e.g. constraint violations found by
// the coordinator) to the active registry.
func (m *CapacityMonitor) Record(alerts ...Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.RaisedAt.IsZero() {
			a.RaisedAt = m.now()
		}
		m.active[a.ID] = a
		m.countLocked(a)
	}
}

// Resolve removes an alert from the active set; it reports whether the id
// was known.
func (m *CapacityMonitor) Resolve(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[id]; !ok {
		return false
	}
	delete(m.active, id)
	return true
}

// AlertSummary aggregates all currently active alerts by severity.
func (m *CapacityMonitor) AlertSummary() AlertSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s AlertSummary
	for _, a := range m.active {
		s.TotalActiveAlerts++
		switch a.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		}
	}
	return s
}

// ActiveAlerts returns the active set ordered newest first; ties break on id.
func (m *CapacityMonitor) ActiveAlerts() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Alert, 0, len(m.active))
	for _, a := range m.active {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RaisedAt.Equal(out[j].RaisedAt) {
			return out[i].RaisedAt.After(out[j].RaisedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LoadBalanceAnalysis scores deck-to-deck and forward/aft evenness. Each
// point of deck-utilization gap and each point of forward/aft weight skew
// costs half a point off 100.
func (m *CapacityMonitor) LoadBalanceAnalysis() BalanceAnalysis {
	metrics := m.inv.UtilizationMetrics()
	deckGap := math.Abs(metrics.LowerDeckUtilizationPct - metrics.MainDeckUtilizationPct)

	mid := (m.cfg.Limits.CGMinM + m.cfg.Limits.CGMaxM) / 2
	var fwd, aft float64
	for _, p := range m.inv.Snapshot() {
		if p.State != StateOccupied || p.Occupant == nil {
			continue
		}
		if p.ArmM < mid {
			fwd += p.Occupant.WeightKg
		} else {
			aft += p.Occupant.WeightKg
		}
	}
	var skew float64
	if total := fwd + aft; total > 0 {
		skew = 100 * math.Abs(fwd-aft) / total
	}

	score := 100 - 0.5*deckGap - 0.5*skew
	if score < 0 {
		score = 0
	}
	return BalanceAnalysis{Score: score, Balanced: score >= m.cfg.Alerts.BalanceScoreMin}
}

// OptimizationOpportunities inspects current occupancy for load-plan
// improvements. Heuristics only; an empty result means nothing obvious.
func (m *CapacityMonitor) OptimizationOpportunities() []Opportunity {
	var opps []Opportunity

	underfilled := 0
	mid := (m.cfg.Limits.CGMinM + m.cfg.Limits.CGMaxM) / 2
	var fwdWeight, totalWeight float64
	aftAvailable := 0

	for _, p := range m.inv.Snapshot() {
		switch p.State {
		case StateOccupied:
			if p.Occupant != nil {
				if p.Occupant.Volume() < 0.3*p.MaxDims.Volume() {
					underfilled++
				}
				totalWeight += p.Occupant.WeightKg
				if p.ArmM < mid {
					fwdWeight += p.Occupant.WeightKg
				}
			}
		case StateAvailable:
			if p.ArmM >= mid {
				aftAvailable++
			}
		}
	}

	if underfilled >= 3 {
		opps = append(opps, Opportunity{
			Type: "consolidation",
			Recommendation: fmt.Sprintf(
				"%d positions are under 30%% volume fill; consolidating small items would free positions", underfilled),
		})
	}
	if totalWeight > 0 && fwdWeight/totalWeight > 0.65 && aftAvailable >= 4 {
		opps = append(opps, Opportunity{
			Type: "redistribution",
			Recommendation: fmt.Sprintf(
				"%.0f%% of load is forward of mid-envelope with %d aft positions free; shifting heavy items aft improves CG margin",
				100*fwdWeight/totalWeight, aftAvailable),
		})
	}

	metrics := m.inv.UtilizationMetrics()
	if metrics.LowerDeckUtilizationPct > metrics.MainDeckUtilizationPct+30 {
		opps = append(opps, Opportunity{
			Type:           "deck_rebalance",
			Recommendation: "lower deck is markedly fuller than the main deck; route stack-tolerant cargo to the main deck",
		})
	}
	return opps
}

// CapacityForecast projects utilization hoursAhead from the recorded trend.
// With fewer than two samples the forecast is the current utilization.
func (m *CapacityMonitor) CapacityForecast(hoursAhead float64) Forecast {
	current := m.inv.UtilizationMetrics().TotalUtilizationPct

	m.mu.Lock()
	defer m.mu.Unlock()

	projected := current
	if len(m.history) >= 2 {
		first, last := m.history[0], m.history[len(m.history)-1]
		if dt := last.at.Sub(first.at).Hours(); dt > 0 {
			slope := (last.utilPct - first.utilPct) / dt
			projected = current + slope*hoursAhead
		}
	}
	if projected < 0 {
		projected = 0
	}
	if projected > 100 {
		projected = 100
	}

	f := Forecast{
		ForecastUtilizationPct: projected,
		WillExceedCapacity:     projected >= m.cfg.Alerts.ForecastExceedPct,
	}
	switch {
	case f.WillExceedCapacity:
		f.Recommendation = fmt.Sprintf("projected %.1f%% in %.0fh; schedule an offload or defer acceptance", projected, hoursAhead)
	case projected >= m.cfg.Alerts.CapacityHighPct:
		f.Recommendation = fmt.Sprintf("projected %.1f%% in %.0fh; tighten acceptance criteria", projected, hoursAhead)
	default:
		f.Recommendation = fmt.Sprintf("projected %.1f%% in %.0fh; capacity adequate", projected, hoursAhead)
	}
	return f
}

// raiseLocked registers a new active alert. Caller must hold m.mu.
func (m *CapacityMonitor) raiseLocked(sev AlertSeverity, typ AlertType, msg string, actions ...string) Alert {
	a := Alert{
		ID:               uuid.NewString(),
		Severity:         sev,
		Type:             typ,
		Message:          msg,
		SuggestedActions: actions,
		RaisedAt:         m.now(),
	}
	m.active[a.ID] = a
	m.countLocked(a)
	return a
}

func (m *CapacityMonitor) countLocked(a Alert) {
	if m.recorder != nil {
		m.recorder.CountAlert(string(a.Severity))
	}
}

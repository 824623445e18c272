package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the load engine and exposes
// a /metrics handler. It satisfies the engine's recorder interfaces so the
// inventory, monitor and coordinator can drive values directly from their
// mutators.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	Assessments         *prometheus.CounterVec
	AssessmentDurations *prometheus.HistogramVec
	Reservations        *prometheus.CounterVec
	Alerts              *prometheus.CounterVec

	PositionsAvailable prometheus.Gauge
	PositionsReserved  prometheus.Gauge
	PositionsOccupied  prometheus.Gauge
	TotalWeightKg      prometheus.Gauge
	CenterOfGravityM   prometheus.Gauge
	UtilizationPct     prometheus.Gauge
	WeightUtilPct      prometheus.Gauge
}

// NewEngineCollector registers engine Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	assessments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmaster_assessments_total",
		Help: "Total number of cargo placement assessments, labeled by outcome.",
	}, []string{"outcome"})
	assessments, err := registerCounterVec(reg, assessments, "loadmaster_assessments_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loadmaster_assessment_duration_seconds",
		Help:    "Cargo placement assessment latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"outcome"})
	durations, err = registerHistogramVec(reg, durations, "loadmaster_assessment_duration_seconds")
	if err != nil {
		return nil, err
	}

	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmaster_reservations_total",
		Help: "Total reserve/occupy/release operations, labeled by op and outcome.",
	}, []string{"op", "outcome"})
	reservations, err = registerCounterVec(reg, reservations, "loadmaster_reservations_total")
	if err != nil {
		return nil, err
	}

	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loadmaster_alerts_total",
		Help: "Total alerts raised, labeled by severity.",
	}, []string{"severity"})
	alerts, err = registerCounterVec(reg, alerts, "loadmaster_alerts_total")
	if err != nil {
		return nil, err
	}

	available, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loadmaster_positions_available",
		Help: "Current number of AVAILABLE load positions.",
	}), "loadmaster_positions_available")
	if err != nil {
		return nil, err
	}
	reserved, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loadmaster_positions_reserved",
		Help: "Current number of RESERVED load positions.",
	}), "loadmaster_positions_reserved")
	if err != nil {
		return nil, err
	}
	occupied, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loadmaster_positions_occupied",
		Help: "Current number of OCCUPIED load positions.",
	}), "loadmaster_positions_occupied")
	if err != nil {
		return nil, err
	}
	totalWeight, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loadmaster_cargo_weight_kg",
		Help: "Total weight of occupied positions in kilograms.",
	}), "loadmaster_cargo_weight_kg")
	if err != nil {
		return nil, err
	}
	cg, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loadmaster_center_of_gravity_m",
		Help: "Current longitudinal center of gravity in metres from the datum.",
	}), "loadmaster_center_of_gravity_m")
	if err != nil {
		return nil, err
	}
	utilization, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loadmaster_utilization_pct",
		Help: "Share of positions reserved or occupied, 0-100.",
	}), "loadmaster_utilization_pct")
	if err != nil {
		return nil, err
	}
	weightUtil, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loadmaster_weight_utilization_pct",
		Help: "Share of the aircraft weight limit in use, 0-100.",
	}), "loadmaster_weight_utilization_pct")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:            gatherer,
		Assessments:         assessments,
		AssessmentDurations: durations,
		Reservations:        reservations,
		Alerts:              alerts,
		PositionsAvailable:  available,
		PositionsReserved:   reserved,
		PositionsOccupied:   occupied,
		TotalWeightKg:       totalWeight,
		CenterOfGravityM:    cg,
		UtilizationPct:      utilization,
		WeightUtilPct:       weightUtil,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetOccupancy satisfies the inventory's OccupancyRecorder interface.
func (c *EngineCollector) SetOccupancy(available, reserved, occupied int) {
	if c == nil {
		return
	}
	if c.PositionsAvailable != nil {
		c.PositionsAvailable.Set(float64(available))
	}
	if c.PositionsReserved != nil {
		c.PositionsReserved.Set(float64(reserved))
	}
	if c.PositionsOccupied != nil {
		c.PositionsOccupied.Set(float64(occupied))
	}
}

// SetLoad publishes the current total weight and center of gravity.
func (c *EngineCollector) SetLoad(totalWeightKg, cgM float64) {
	if c == nil {
		return
	}
	if c.TotalWeightKg != nil {
		c.TotalWeightKg.Set(totalWeightKg)
	}
	if c.CenterOfGravityM != nil {
		c.CenterOfGravityM.Set(cgM)
	}
}

// SetUtilization publishes position and weight utilization percentages.
func (c *EngineCollector) SetUtilization(totalPct, weightPct float64) {
	if c == nil {
		return
	}
	if c.UtilizationPct != nil {
		c.UtilizationPct.Set(totalPct)
	}
	if c.WeightUtilPct != nil {
		c.WeightUtilPct.Set(weightPct)
	}
}

// CountAssessment records one assessment with its outcome and duration.
func (c *EngineCollector) CountAssessment(outcome string, seconds float64) {
	if c == nil {
		return
	}
	if c.Assessments != nil {
		c.Assessments.WithLabelValues(outcome).Inc()
	}
	if c.AssessmentDurations != nil {
		c.AssessmentDurations.WithLabelValues(outcome).Observe(seconds)
	}
}

// CountReservation records one reserve/occupy/release operation.
func (c *EngineCollector) CountReservation(op, outcome string) {
	if c == nil || c.Reservations == nil {
		return
	}
	c.Reservations.WithLabelValues(op, outcome).Inc()
}

// CountAlert records one raised alert.
func (c *EngineCollector) CountAlert(severity string) {
	if c == nil || c.Alerts == nil {
		return
	}
	c.Alerts.WithLabelValues(severity).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

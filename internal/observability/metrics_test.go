package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCountAssessmentRecordsOutcomeAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.CountAssessment("success", 0.002)
	collector.CountAssessment("success", 0.004)
	collector.CountAssessment("rejected", 0.001)

	if got := testutil.ToFloat64(collector.Assessments.WithLabelValues("success")); got != 2 {
		t.Fatalf("assessments_total{outcome=success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Assessments.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("assessments_total{outcome=rejected} = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "loadmaster_assessment_duration_seconds", map[string]string{
		"outcome": "success",
	}); count != 2 {
		t.Fatalf("assessment_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestCountReservationAndAlertLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}

	collector.CountReservation("reserve", "ok")
	collector.CountReservation("reserve", "error")
	collector.CountReservation("release", "ok")
	collector.CountAlert("CRITICAL")
	collector.CountAlert("CRITICAL")
	collector.CountAlert("MEDIUM")

	if got := testutil.ToFloat64(collector.Reservations.WithLabelValues("reserve", "ok")); got != 1 {
		t.Fatalf("reservations_total{reserve,ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Reservations.WithLabelValues("reserve", "error")); got != 1 {
		t.Fatalf("reservations_total{reserve,error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Alerts.WithLabelValues("CRITICAL")); got != 2 {
		t.Fatalf("alerts_total{CRITICAL} = %v, want 2", got)
	}
}

func TestMetricsHandlerExposesEngineGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("NewEngineCollector: %v", err)
	}
	collector.SetOccupancy(50, 2, 4)
	collector.SetLoad(5800, 21.43)
	collector.SetUtilization(10.7, 5.3)
	collector.CountAssessment("success", 0.003)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"loadmaster_assessments_total",
		"loadmaster_assessment_duration_seconds",
		"loadmaster_positions_available",
		"loadmaster_positions_reserved",
		"loadmaster_positions_occupied",
		"loadmaster_cargo_weight_kg",
		"loadmaster_center_of_gravity_m",
		"loadmaster_utilization_pct",
		"loadmaster_weight_utilization_pct",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}

	if got := testutil.ToFloat64(collector.PositionsAvailable); got != 50 {
		t.Fatalf("positions_available = %v, want 50", got)
	}
	if got := testutil.ToFloat64(collector.TotalWeightKg); got != 5800 {
		t.Fatalf("cargo_weight_kg = %v, want 5800", got)
	}
}

func TestNewEngineCollectorToleratesReRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("first NewEngineCollector: %v", err)
	}
	second, err := NewEngineCollector(reg)
	if err != nil {
		t.Fatalf("second NewEngineCollector: %v", err)
	}

	first.CountAlert("HIGH")
	second.CountAlert("HIGH")
	if got := testutil.ToFloat64(first.Alerts.WithLabelValues("HIGH")); got != 2 {
		t.Fatalf("alerts_total{HIGH} = %v, want 2 (shared collector)", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// ScrapeMetrics serves a GET /metrics through handler and returns the
// exposition text.
func ScrapeMetrics(t *testing.T, handler http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned status %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	return string(body)
}

// MetricValue returns the value of the first series of name whose labels
// include every pair in labels. ok is false when no series matches.
func MetricValue(t *testing.T, metrics, name string, labels map[string]string) (float64, bool) {
	t.Helper()
	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(strings.NewReader(metrics))
	if err != nil {
		t.Fatalf("failed to parse metrics: %v", err)
	}
	family, ok := families[name]
	if !ok {
		return 0, false
	}
	for _, m := range family.GetMetric() {
		if !hasLabels(m, labels) {
			continue
		}
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue(), true
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue(), true
		case m.GetUntyped() != nil:
			return m.GetUntyped().GetValue(), true
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount()), true
		}
	}
	return 0, false
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	for key, value := range want {
		found := false
		for _, pair := range m.GetLabel() {
			if pair.GetName() == key && pair.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func mustMetricValue(t *testing.T, metrics, name string, labels map[string]string) float64 {
	t.Helper()
	value, ok := MetricValue(t, metrics, name, labels)
	if !ok {
		t.Fatalf("metric %s%v not found", name, labels)
	}
	return value
}

// AssertMetricExists fails the test when name has no series at all.
func AssertMetricExists(t *testing.T, metrics, name string) {
	t.Helper()
	mustMetricValue(t, metrics, name, nil)
}

// AssertMetricValue checks the value of the series selected by labels.
// Histograms compare their sample count.
func AssertMetricValue(t *testing.T, metrics, name string, labels map[string]string, want float64) {
	t.Helper()
	if got := mustMetricValue(t, metrics, name, labels); got != want {
		t.Errorf("metric %s%v = %v, want %v", name, labels, got, want)
	}
}

// AssertMetricGreaterThan checks that the selected series exceeds threshold.
func AssertMetricGreaterThan(t *testing.T, metrics, name string, labels map[string]string, threshold float64) {
	t.Helper()
	if got := mustMetricValue(t, metrics, name, labels); got <= threshold {
		t.Errorf("metric %s%v = %v, want > %v", name, labels, got, threshold)
	}
}

// AssertMetricIncremented checks that the selected series grew between two
// scrapes. A series missing from before counts as zero.
func AssertMetricIncremented(t *testing.T, before, after, name string, labels map[string]string) {
	t.Helper()
	prev, _ := MetricValue(t, before, name, labels)
	next := mustMetricValue(t, after, name, labels)
	if next <= prev {
		t.Errorf("metric %s%v did not increment: before=%v, after=%v", name, labels, prev, next)
	}
}

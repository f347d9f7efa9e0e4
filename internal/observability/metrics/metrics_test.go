package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestContactMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewContactMetrics(reg)

	m.ObserveSubmission("accepted", 0.2)
	m.ObserveSubmission("accepted", 0.3)
	m.ObserveSubmission("rejected", 0.01)
	m.ObserveStoreWrite("initial", nil)
	m.ObserveStoreWrite("status_update", errors.New("boom"))
	m.ObserveNotification("stakeholder", nil)
	m.ObserveNotification("confirmation", errors.New("bounce"))

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("accepted")); got != 2 {
		t.Fatalf("expected 2 accepted submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.storeWritesTotal.WithLabelValues("status_update", "error")); got != 1 {
		t.Fatalf("expected 1 failed status update, got %v", got)
	}
	if got := testutil.ToFloat64(m.notificationsTotal.WithLabelValues("confirmation", "error")); got != 1 {
		t.Fatalf("expected 1 failed confirmation, got %v", got)
	}
}

func TestContactMetricsLatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewContactMetrics(reg)
	m.ObserveSubmission("accepted", 0.5)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf.GetName() == "contactform_intake_handle_latency_seconds" {
			family = mf
		}
	}
	if family == nil {
		t.Fatal("expected latency histogram to be registered")
	}
	h := family.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 1 || h.GetSampleSum() != 0.5 {
		t.Fatalf("unexpected histogram sample count=%d sum=%v", h.GetSampleCount(), h.GetSampleSum())
	}
}

func TestContactMetricsNilSafe(t *testing.T) {
	var m *ContactMetrics
	m.ObserveSubmission("accepted", 0.1)
	m.ObserveStoreWrite("initial", nil)
	m.ObserveNotification("stakeholder", errors.New("x"))
}

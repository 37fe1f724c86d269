package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestQuoteMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQuoteMetrics(reg)

	m.ObserveSearch("ok", 120*time.Millisecond, 3)
	m.ObserveSearch("empty", 10*time.Millisecond, 0)
	m.IncSkipped("computation")
	m.IncSkipped("computation")
	m.IncSkipped("")
	m.IncDetail("hit")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "rental_pricing_quote_searches_total", "outcome", "ok"); err != nil {
		t.Fatalf("fetch searches: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ok searches=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "rental_pricing_quote_candidates_skipped_total", "reason", "computation"); err != nil {
		t.Fatalf("fetch skipped: %v", err)
	} else if got != 2 {
		t.Fatalf("expected computation skips=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "rental_pricing_quote_candidates_skipped_total", "reason", "unknown"); err != nil {
		t.Fatalf("fetch unknown skip: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown skips=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "rental_pricing_quote_detail_lookups_total", "outcome", "hit"); err != nil {
		t.Fatalf("fetch details: %v", err)
	} else if got != 1 {
		t.Fatalf("expected detail hits=1, got %f", got)
	}

	produced := findMetricFamily(mfs, "rental_pricing_quotes_produced_total")
	if produced == nil || produced.GetMetric()[0].GetCounter().GetValue() != 3 {
		t.Fatalf("expected 3 produced quotes, got %v", produced)
	}

	duration := findMetricFamily(mfs, "rental_pricing_quote_search_duration_seconds")
	if duration == nil {
		t.Fatal("duration histogram not exported")
	}
	if got := duration.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Fatalf("expected 2 duration samples, got %d", got)
	}
}

func TestQuoteMetricsNilSafe(t *testing.T) {
	var m *QuoteMetrics
	m.ObserveSearch("ok", time.Second, 1)
	m.IncSkipped("x")
	m.IncDetail("miss")

	unregistered := NewQuoteMetrics(nil)
	unregistered.ObserveSearch("ok", time.Second, 1)
	unregistered.IncSkipped("x")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

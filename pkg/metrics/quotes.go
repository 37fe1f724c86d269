package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rental_pricing"

// QuoteMetrics records quote search and detail activity. A nil *QuoteMetrics
// or one built without a registerer drops every observation.
type QuoteMetrics struct {
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	produced       prometheus.Counter
	skipped        *prometheus.CounterVec
	details        *prometheus.CounterVec
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_searches_total",
		Help:      "Quote searches by outcome.",
	}, []string{"outcome"})
	searchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "quote_search_duration_seconds",
		Help:      "Wall time of quote searches in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	produced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_produced_total",
		Help:      "Quotes priced and cached.",
	})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_candidates_skipped_total",
		Help:      "Stores or store/product pairs dropped from a search, by reason.",
	}, []string{"reason"})
	details := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_detail_lookups_total",
		Help:      "Quote detail lookups by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(searches, searchDuration, produced, skipped, details)
	return &QuoteMetrics{
		searches:       searches,
		searchDuration: searchDuration,
		produced:       produced,
		skipped:        skipped,
		details:        details,
	}
}

// ObserveSearch records one finished search.
func (m *QuoteMetrics) ObserveSearch(outcome string, duration time.Duration, quotes int) {
	if m == nil || m.searches == nil {
		return
	}
	m.searches.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.searchDuration.Observe(duration.Seconds())
	if quotes > 0 {
		m.produced.Add(float64(quotes))
	}
}

func (m *QuoteMetrics) IncSkipped(reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *QuoteMetrics) IncDetail(outcome string) {
	if m == nil || m.details == nil {
		return
	}
	m.details.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

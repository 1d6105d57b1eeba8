// Package metrics defines the Prometheus collectors of the comparison
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "concord"

var extractorBuckets = []float64{.25, .5, 1, 2, 5, 10, 30, 60, 120}

type Metrics struct {
	Comparisons       *prometheus.CounterVec
	Pairs             *prometheus.CounterVec
	ExtractorCalls    *prometheus.CounterVec
	ExtractorDuration prometheus.Histogram
	ParseFallbacks    prometheus.Counter
	Similarity        prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Document comparisons by outcome.",
		}, []string{"outcome"}),
		Pairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_total",
			Help:      "Aligned paragraph pairs by gate decision.",
		}, []string{"decision"}),
		ExtractorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractor_calls_total",
			Help:      "Difference extractor calls by outcome.",
		}, []string{"outcome"}),
		ExtractorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extractor_duration_seconds",
			Help:      "Latency of difference extractor calls.",
			Buckets:   extractorBuckets,
		}),
		ParseFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_fallbacks_total",
			Help:      "Extractor responses that used the degraded record grammar.",
		}),
		Similarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pair_similarity",
			Help:      "Cosine similarity of aligned pairs.",
			Buckets:   prometheus.LinearBuckets(-1, 0.1, 21),
		}),
	}
	reg.MustRegister(m.Comparisons, m.Pairs, m.ExtractorCalls, m.ExtractorDuration, m.ParseFallbacks, m.Similarity)
	return m
}

func (m *Metrics) ObserveComparison(outcome string) {
	if m == nil {
		return
	}
	m.Comparisons.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePair(decision string, similarity float64) {
	if m == nil {
		return
	}
	m.Pairs.WithLabelValues(decision).Inc()
	m.Similarity.Observe(similarity)
}

func (m *Metrics) ObserveExtractor(outcome string, took time.Duration, fallback bool) {
	if m == nil {
		return
	}
	m.ExtractorCalls.WithLabelValues(outcome).Inc()
	m.ExtractorDuration.Observe(took.Seconds())
	if fallback {
		m.ParseFallbacks.Inc()
	}
}

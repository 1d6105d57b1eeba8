package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveComparison("ok")
	m.ObservePair("escalate", 0.5)
	m.ObservePair("skip", 0.99)
	m.ObservePair("skip", 1)
	m.ObserveExtractor("ok", time.Second, true)
	m.ObserveExtractor("timeout", 2*time.Second, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Comparisons.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Pairs.WithLabelValues("skip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractorCalls.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Pairs.WithLabelValues("escalate")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Similarity))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveComparison("ok")
		m.ObservePair("skip", 1)
		m.ObserveExtractor("ok", time.Millisecond, false)
	})
}

// Package telemetry provides Prometheus metrics for the evaluation engine.
//
// A nil *Metrics is valid and records nothing, so evaluators can hold one
// unconditionally.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the evaluation counters, gauges and histograms.
type Metrics struct {
	ExamplesEvaluated   prometheus.Counter       // Examples passed through a tree-range evaluation
	BlocksBinarized     prometheus.Counter       // Example blocks binarized
	CtrProviderCalls    prometheus.Counter       // Calls into the ctr provider
	CtrProviderFailures prometheus.Counter       // Ctr provider calls that returned an error
	EvaluationErrors    *prometheus.CounterVec   // Failed evaluation calls by operation
	EvaluationDuration  *prometheus.HistogramVec // Wall time of evaluation calls by operation
	CachedBytes         prometheus.Gauge         // Bytes retained by live cached evaluators
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics on a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		ExamplesEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "symforest_examples_evaluated_total",
			Help: "Total number of examples evaluated over a tree range",
		}),
		BlocksBinarized: factory.NewCounter(prometheus.CounterOpts{
			Name: "symforest_blocks_binarized_total",
			Help: "Total number of example blocks binarized",
		}),
		CtrProviderCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "symforest_ctr_provider_calls_total",
			Help: "Total number of ctr provider invocations",
		}),
		CtrProviderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "symforest_ctr_provider_failures_total",
			Help: "Total number of failed ctr provider invocations",
		}),
		EvaluationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "symforest_evaluation_errors_total",
			Help: "Total number of failed evaluation calls",
		}, []string{"operation"}),
		EvaluationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "symforest_evaluation_duration_seconds",
			Help:    "Duration of evaluation calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"operation"}),
		CachedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "symforest_cached_bytes",
			Help: "Bytes of binarized features retained by cached evaluators",
		}),
	}
}

// ObserveCall records a finished evaluation call.
func (m *Metrics) ObserveCall(operation string, examples int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.EvaluationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		m.EvaluationErrors.WithLabelValues(operation).Inc()
		return
	}
	m.ExamplesEvaluated.Add(float64(examples))
}

// BlockBinarized counts one binarized block.
func (m *Metrics) BlockBinarized() {
	if m == nil {
		return
	}
	m.BlocksBinarized.Inc()
}

// CtrCall counts a provider invocation and its outcome.
func (m *Metrics) CtrCall(err error) {
	if m == nil {
		return
	}
	m.CtrProviderCalls.Inc()
	if err != nil {
		m.CtrProviderFailures.Inc()
	}
}

// AddCachedBytes adjusts the retained-bytes gauge.
func (m *Metrics) AddCachedBytes(delta int64) {
	if m == nil {
		return
	}
	m.CachedBytes.Add(float64(delta))
}

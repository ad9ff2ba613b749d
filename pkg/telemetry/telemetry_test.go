package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCall(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveCall("calc", 300, 2*time.Millisecond, nil)
	m.ObserveCall("calc", 5, time.Millisecond, fmt.Errorf("bad size"))

	assert.Equal(t, 300.0, testutil.ToFloat64(m.ExamplesEvaluated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationErrors.WithLabelValues("calc")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.EvaluationDuration))
}

func TestCountersAndGauge(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.BlockBinarized()
	m.BlockBinarized()
	m.CtrCall(nil)
	m.CtrCall(fmt.Errorf("provider down"))
	m.AddCachedBytes(4096)
	m.AddCachedBytes(-1024)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlocksBinarized))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CtrProviderCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CtrProviderFailures))
	assert.Equal(t, 3072.0, testutil.ToFloat64(m.CachedBytes))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCall("calc", 1, time.Second, nil)
		m.BlockBinarized()
		m.CtrCall(nil)
		m.AddCachedBytes(10)
	})
}

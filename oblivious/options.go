package oblivious

import (
	"runtime"

	"github.com/YuminosukeSato/symforest/pkg/log"
	"github.com/YuminosukeSato/symforest/pkg/telemetry"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithBlockSize sets the number of examples binarized together. Values below
// 1 are ignored.
func WithBlockSize(n int) Option {
	return func(e *Evaluator) {
		if n >= 1 {
			e.blockSize = n
		}
	}
}

// WithWorkers sets how many goroutines process blocks. -1 (or 0) uses all
// CPUs. With more than one worker the accessors and the ctr provider are
// called concurrently and must be safe for that.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		e.workers = n
	}
}

// WithCtrProvider injects the categorical statistic calculator. Required when
// the model has ctr features.
func WithCtrProvider(p CtrProvider) Option {
	return func(e *Evaluator) {
		e.ctrProvider = p
	}
}

// WithLogger replaces the package default logger.
func WithLogger(l log.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records evaluation metrics into m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// WithCacheBudget caps the bytes all cached evaluators created from the
// Evaluator may retain at once. 0 means unlimited.
func WithCacheBudget(maxBytes int64) Option {
	return func(e *Evaluator) {
		e.cacheBudget = maxBytes
	}
}

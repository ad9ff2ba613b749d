package performance

import (
	"sync"
	"sync/atomic"
)

// Pool recycles scratch values of type T to reduce GC pressure when the same
// kind of buffer is needed by many short-lived workers.
type Pool[T any] struct {
	pool     sync.Pool
	reset    func(T)
	inUse    int64
	created  int64
	recycled int64
	peak     int64
}

// PoolStats tracks pool performance metrics
type PoolStats struct {
	TotalAllocated   int64
	TotalRecycled    int64
	CurrentInUse     int64
	PeakUsage        int64
	AverageReuseRate float64
}

// NewPool returns a pool creating values with newFn. reset, when non-nil, is
// applied to a value on Put.
func NewPool[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.created, 1)
		return newFn()
	}
	return p
}

// Get retrieves a value from the pool
func (p *Pool[T]) Get() T {
	current := atomic.AddInt64(&p.inUse, 1)
	for {
		peak := atomic.LoadInt64(&p.peak)
		if current <= peak || atomic.CompareAndSwapInt64(&p.peak, peak, current) {
			break
		}
	}
	return p.pool.Get().(T)
}

// Put returns a value to the pool
func (p *Pool[T]) Put(v T) {
	if p.reset != nil {
		p.reset(v)
	}
	atomic.AddInt64(&p.inUse, -1)
	atomic.AddInt64(&p.recycled, 1)
	p.pool.Put(v)
}

// GetStats returns current pool statistics
func (p *Pool[T]) GetStats() PoolStats {
	total := atomic.LoadInt64(&p.created)
	recycled := atomic.LoadInt64(&p.recycled)

	reuseRate := float64(0)
	if total > 0 {
		reuseRate = float64(recycled) / float64(total)
	}

	return PoolStats{
		TotalAllocated:   total,
		TotalRecycled:    recycled,
		CurrentInUse:     atomic.LoadInt64(&p.inUse),
		PeakUsage:        atomic.LoadInt64(&p.peak),
		AverageReuseRate: reuseRate,
	}
}

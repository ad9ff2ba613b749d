package oblivious

import (
	"sync"
	"time"

	"github.com/YuminosukeSato/symforest/core/parallel"
	"github.com/YuminosukeSato/symforest/pkg/errors"
	"github.com/YuminosukeSato/symforest/pkg/log"
)

// CachedEvaluator holds the binarized form of a fixed example set so that
// repeated tree-range evaluations skip binarization entirely.
//
// Calc may be called from several goroutines at once with distinct result
// buffers. Close releases the retained bytes from the evaluator's cache
// budget.
type CachedEvaluator struct {
	evaluator  *Evaluator
	docCount   int
	blockSize  int
	blockCount int
	blocks     [][]byte
	bytes      int64

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewCachedEvaluator binarizes the examples [0, docCount) once, retaining one
// packed buffer per block. The ctr provider, if any, is called here and never
// again.
func (e *Evaluator) NewCachedEvaluator(floats FloatAccessor, cats CatAccessor, docCount int) (*CachedEvaluator, error) {
	if err := e.checkCall(log.OperationCache, floats, cats, docCount, 0, 0); err != nil {
		return nil, err
	}

	blockSize, blockCount := e.blocks(docCount)
	c := &CachedEvaluator{
		evaluator:  e,
		docCount:   docCount,
		blockSize:  blockSize,
		blockCount: blockCount,
		blocks:     make([][]byte, blockCount),
	}
	for b := range c.blocks {
		n := min(blockSize, docCount-b*blockSize)
		c.bytes += int64(e.layout.blockBytes(n))
	}
	if err := e.budget.Allocate(c.bytes); err != nil {
		used, limit := e.budget.GetUsage()
		e.logger.Warn("cache budget exceeded",
			log.OperationKey, log.OperationCache,
			log.MemoryUsageKey, used,
			"requested", c.bytes,
			"limit", limit,
		)
		return nil, errors.Wrapf(err, "caching %d examples", docCount)
	}

	err := parallel.ParallelizeWithThreshold(blockCount, 1, e.workers, func(_, first, last int) error {
		s := e.scratch.Get()
		defer e.scratch.Put(s)

		for b := first; b < last; b++ {
			blockStart := b * blockSize
			n := min(blockSize, docCount-blockStart)
			bin := make([]byte, e.layout.blockBytes(n))
			if err := e.binarizeBlock(floats, cats, blockStart, n, bin, s.hashes, s.ctrs); err != nil {
				return err
			}
			c.blocks[b] = bin
		}
		return nil
	})
	if err != nil {
		e.budget.Free(c.bytes)
		return nil, err
	}
	e.metrics.AddCachedBytes(c.bytes)

	e.logger.Debug("examples cached",
		log.ExamplesKey, docCount,
		log.BlocksKey, blockCount,
		log.MemoryUsageKey, c.bytes,
	)
	return c, nil
}

// DocCount returns the number of cached examples.
func (c *CachedEvaluator) DocCount() int { return c.docCount }

// BlockCount returns the number of retained packed buffers.
func (c *CachedEvaluator) BlockCount() int { return c.blockCount }

// MemoryBytes returns the size of the retained packed buffers.
func (c *CachedEvaluator) MemoryBytes() int64 { return c.bytes }

// Calc zeroes results and accumulates trees [treeStart, treeEnd) for every
// cached example. The output equals Evaluator.Calc over the same examples.
func (c *CachedEvaluator) Calc(treeStart, treeEnd int, results []float64) (err error) {
	e := c.evaluator
	start := time.Now()
	defer func() {
		e.metrics.ObserveCall(log.OperationCache, c.docCount, time.Since(start), err)
	}()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.NewValueError(log.OperationCache, "cached evaluator is closed")
	}
	if err = e.checkTreeRange(treeStart, treeEnd); err != nil {
		return err
	}
	if want := c.docCount * e.model.ApproxDimension; len(results) != want {
		return errors.NewDimensionError(log.OperationCache, want, len(results), 1)
	}
	clear(results)
	if c.docCount == 0 {
		return nil
	}

	l := e.layout
	k := selectKernel(l.dimension, c.blockSize, l.hasOneHots)
	return parallel.ParallelizeWithThreshold(len(c.blocks), 1, e.workers, func(_, first, last int) error {
		s := e.scratch.Get()
		defer e.scratch.Put(s)

		for b := first; b < last; b++ {
			blockStart := b * c.blockSize
			n := min(c.blockSize, c.docCount-blockStart)
			k.calc(l, blockStart, c.blocks[b], n, s.indexes, treeStart, treeEnd, results)
		}
		return nil
	})
}

// Close drops the cached buffers. Calc fails afterwards. Close is idempotent.
func (c *CachedEvaluator) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		c.blocks = nil
		c.evaluator.budget.Free(c.bytes)
		c.evaluator.metrics.AddCachedBytes(-c.bytes)
	})
	return nil
}

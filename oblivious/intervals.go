package oblivious

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/symforest/core/parallel"
	"github.com/YuminosukeSato/symforest/pkg/errors"
	"github.com/YuminosukeSato/symforest/pkg/log"
)

// CalcTreeIntervals evaluates the model in consecutive tree intervals of
// length step. Row doc of the result has ceil(TreeCount/step) entries; entry j
// is the sum of trees [j*step, min((j+1)*step, TreeCount)) alone, so callers
// wanting staged predictions take running sums. Each block is binarized once.
//
// Only single-output models are supported.
func (e *Evaluator) CalcTreeIntervals(floats FloatAccessor, cats CatAccessor, docCount, step int) (out [][]float64, err error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveCall(log.OperationIntervals, docCount, time.Since(start), err)
	}()

	if e.model.ApproxDimension != 1 {
		return nil, errors.NewValueError(log.OperationIntervals,
			fmt.Sprintf("interval evaluation needs a single-output model, got dimension %d", e.model.ApproxDimension))
	}
	if step < 1 {
		return nil, errors.NewValidationError("step", "must be at least 1", step)
	}
	treeCount := len(e.model.Trees)
	if err = e.checkCall(log.OperationIntervals, floats, cats, docCount, 0, treeCount); err != nil {
		return nil, err
	}

	checkpoints := (treeCount + step - 1) / step
	flat := make([]float64, docCount*checkpoints)
	out = make([][]float64, docCount)
	for doc := range out {
		out[doc] = flat[doc*checkpoints : (doc+1)*checkpoints : (doc+1)*checkpoints]
	}
	if docCount == 0 || checkpoints == 0 {
		return out, nil
	}

	blockSize, blockCount := e.blocks(docCount)
	l := e.layout
	k := selectKernel(l.dimension, blockSize, l.hasOneHots)

	err = parallel.ParallelizeWithThreshold(blockCount, 1, e.workers, func(_, first, last int) error {
		s := e.scratch.Get()
		defer e.scratch.Put(s)

		for b := first; b < last; b++ {
			blockStart := b * blockSize
			n := min(blockSize, docCount-blockStart)
			bin := s.bin[:l.blockBytes(n)]
			if err := e.binarizeBlock(floats, cats, blockStart, n, bin, s.hashes, s.ctrs); err != nil {
				return err
			}
			tmp := s.tmp[:n]
			for j := 0; j < checkpoints; j++ {
				clear(tmp)
				k.calc(l, 0, bin, n, s.indexes, j*step, min((j+1)*step, treeCount), tmp)
				for doc, v := range tmp {
					flat[(blockStart+doc)*checkpoints+j] = v
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

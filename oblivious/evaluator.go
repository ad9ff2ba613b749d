package oblivious

import (
	"context"
	"time"

	"github.com/YuminosukeSato/symforest/core/parallel"
	"github.com/YuminosukeSato/symforest/performance"
	"github.com/YuminosukeSato/symforest/pkg/errors"
	"github.com/YuminosukeSato/symforest/pkg/log"
	"github.com/YuminosukeSato/symforest/pkg/telemetry"
)

// DefaultBlockSize is the number of examples binarized and evaluated together
// unless WithBlockSize says otherwise.
const DefaultBlockSize = 128

// Evaluator computes raw ensemble scores for batches of examples. It holds
// only read-only state derived from the model, so one Evaluator may serve
// concurrent calls as long as each call has its own result buffer.
type Evaluator struct {
	model       *Model
	layout      *layout
	ctrProvider CtrProvider

	blockSize   int
	workers     int
	cacheBudget int64

	logger  log.Logger
	metrics *telemetry.Metrics
	budget  *performance.MemoryBudget
	scratch *performance.Pool[*scratch]
}

// scratch is the per-goroutine working memory for one block.
type scratch struct {
	bin     []byte
	hashes  []int32
	ctrs    []float32
	indexes []uint32
	tmp     []float64
}

// NewEvaluator validates model and prepares its packed layout.
func NewEvaluator(model *Model, opts ...Option) (*Evaluator, error) {
	if model == nil {
		return nil, errors.NewValidationError("model", "must not be nil", nil)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	e := &Evaluator{
		model:     model,
		blockSize: DefaultBlockSize,
		workers:   1,
		logger:    log.GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(model.CtrFeatures) > 0 && e.ctrProvider == nil {
		return nil, errors.WithStack(errors.ErrMissingCtrProvider)
	}

	e.layout = newLayout(model)
	e.budget = performance.NewMemoryBudget(e.cacheBudget)
	e.logger = e.logger.With(log.ComponentKey, "oblivious")

	blockSize, l := e.blockSize, e.layout
	e.scratch = performance.NewPool(func() *scratch {
		return &scratch{
			bin:     make([]byte, l.blockBytes(blockSize)),
			hashes:  make([]int32, l.catCount*blockSize),
			ctrs:    make([]float32, len(model.CtrFeatures)*blockSize),
			indexes: make([]uint32, blockSize),
			tmp:     make([]float64, blockSize*l.dimension),
		}
	}, nil)

	if e.logger.Enabled(context.Background(), log.LevelDebug) {
		e.logger.Debug("evaluator ready",
			log.TreesKey, model.TreeCount(),
			log.ApproxDimensionKey, model.ApproxDimension,
			log.BinaryFeaturesKey, l.planeCount,
			log.BlockSizeKey, e.blockSize,
			log.WorkersKey, e.workers,
			log.KernelKey, selectKernel(l.dimension, e.blockSize, l.hasOneHots).name,
		)
	}
	return e, nil
}

// Model returns the evaluated model.
func (e *Evaluator) Model() *Model { return e.model }

// TreeCount returns the number of trees of the model.
func (e *Evaluator) TreeCount() int { return len(e.model.Trees) }

// ApproxDimension returns the number of outputs per example.
func (e *Evaluator) ApproxDimension() int { return e.model.ApproxDimension }

// BlockSize returns the configured block size.
func (e *Evaluator) BlockSize() int { return e.blockSize }

// Calc zeroes results and adds to results[doc*dim+k] the output k of every
// tree in [treeStart, treeEnd) for the examples [0, docCount).
func (e *Evaluator) Calc(floats FloatAccessor, cats CatAccessor, docCount, treeStart, treeEnd int, results []float64) (err error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveCall(log.OperationCalc, docCount, time.Since(start), err)
	}()

	if err = e.checkCall(log.OperationCalc, floats, cats, docCount, treeStart, treeEnd); err != nil {
		return err
	}
	if want := docCount * e.model.ApproxDimension; len(results) != want {
		return errors.NewDimensionError(log.OperationCalc, want, len(results), 1)
	}
	clear(results)
	if docCount == 0 {
		return nil
	}
	if docCount == 1 {
		return e.calcSingle(floats, cats, treeStart, treeEnd, results)
	}
	return e.calcBlocks(floats, cats, docCount, treeStart, treeEnd, results)
}

// checkCall validates the arguments shared by every evaluation entry point.
func (e *Evaluator) checkCall(op string, floats FloatAccessor, cats CatAccessor, docCount, treeStart, treeEnd int) error {
	if docCount < 0 {
		return errors.NewValidationError("docCount", "must not be negative", docCount)
	}
	if err := e.checkTreeRange(treeStart, treeEnd); err != nil {
		return err
	}
	if docCount > 0 && len(e.model.FloatFeatures) > 0 && floats == nil {
		return errors.NewValidationError("floats", op+": model has float features but accessor is nil", nil)
	}
	if docCount > 0 && e.layout.catCount > 0 && cats == nil {
		return errors.NewValidationError("cats", op+": model has categorical features but accessor is nil", nil)
	}
	return nil
}

func (e *Evaluator) checkTreeRange(treeStart, treeEnd int) error {
	if treeStart < 0 || treeStart > treeEnd || treeEnd > len(e.model.Trees) {
		return errors.NewValidationError("treeRange", "must satisfy 0 <= treeStart <= treeEnd <= tree count",
			[2]int{treeStart, treeEnd})
	}
	return nil
}

func (e *Evaluator) calcSingle(floats FloatAccessor, cats CatAccessor, treeStart, treeEnd int, results []float64) error {
	s := e.scratch.Get()
	defer e.scratch.Put(s)

	if err := e.binarizeBlock(floats, cats, 0, 1, s.bin, s.hashes, s.ctrs); err != nil {
		return err
	}
	k := selectKernel(e.layout.dimension, 1, e.layout.hasOneHots)
	k.calc(e.layout, 0, s.bin, 1, nil, treeStart, treeEnd, results)
	return nil
}

// blocks splits docCount examples into blocks of the evaluator's block size.
func (e *Evaluator) blocks(docCount int) (blockSize, blockCount int) {
	blockSize = min(e.blockSize, docCount)
	if blockSize == 0 {
		return 0, 0
	}
	return blockSize, (docCount + blockSize - 1) / blockSize
}

func (e *Evaluator) calcBlocks(floats FloatAccessor, cats CatAccessor, docCount, treeStart, treeEnd int, results []float64) error {
	blockSize, blockCount := e.blocks(docCount)
	l := e.layout
	k := selectKernel(l.dimension, blockSize, l.hasOneHots)

	return parallel.ParallelizeWithThreshold(blockCount, 1, e.workers, func(_, first, last int) error {
		s := e.scratch.Get()
		defer e.scratch.Put(s)

		for b := first; b < last; b++ {
			blockStart := b * blockSize
			n := min(blockSize, docCount-blockStart)
			if err := e.binarizeBlock(floats, cats, blockStart, n, s.bin, s.hashes, s.ctrs); err != nil {
				return err
			}
			k.calc(l, blockStart, s.bin[:l.blockBytes(n)], n, s.indexes, treeStart, treeEnd, results)
		}
		return nil
	})
}

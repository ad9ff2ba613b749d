// Package log defines standard attribute keys for evaluation logging.
//
// Keys follow a hierarchical naming convention (e.g. "model.trees",
// "data.examples") so that log records from the evaluator, the cached evaluator
// and the staged helpers can be filtered uniformly.

package log

// Model context
const (
	// ModelNameKey identifies the component or model being logged.
	ModelNameKey = "model.name"

	// TreesKey is the number of trees in the model.
	TreesKey = "model.trees"

	// ApproxDimensionKey is the number of values produced per example per tree.
	ApproxDimensionKey = "model.approx_dimension"

	// BinaryFeaturesKey is the number of byte planes in the packed buffer.
	BinaryFeaturesKey = "model.binary_features"

	// OperationKey specifies the operation being performed.
	// Standard values: OperationCalc, OperationCache, OperationIntervals
	OperationKey = "ml.operation"

	// ComponentKey identifies which package emitted the record.
	ComponentKey = "ml.component"
)

// Data shape
const (
	// ExamplesKey is the number of examples evaluated by the call.
	ExamplesKey = "data.examples"

	// BlockSizeKey is the example block size used for binarization.
	BlockSizeKey = "data.block_size"

	// BlocksKey is the number of blocks the example range was split into.
	BlocksKey = "data.blocks"

	// TreeStartKey and TreeEndKey bound the evaluated tree range.
	TreeStartKey = "trees.start"
	TreeEndKey   = "trees.end"

	// StepKey is the checkpoint step of interval evaluation.
	StepKey = "trees.step"
)

// Execution
const (
	// KernelKey names the tree-calc kernel selected for the call.
	KernelKey = "exec.kernel"

	// WorkersKey is the number of block workers.
	WorkersKey = "exec.workers"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MemoryUsageKey records retained memory in bytes.
	MemoryUsageKey = "perf.memory_bytes"
)

// Error context
const (
	ErrorCodeKey = "error.code"
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationCalc      = "calc"
	OperationCache     = "cache"
	OperationIntervals = "intervals"
	OperationPredict   = "predict"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorProviderFailure   = "CTR_PROVIDER_FAILURE"
)

// Package symforest evaluates ensembles of oblivious decision trees on batches
// of examples, designed for backend services and offline scoring jobs.
//
// An oblivious tree tests the same split at every node of a level, so a tree
// of depth d is d binary tests and a table of 2^d leaves. symforest binarizes
// each block of examples into byte planes once and then walks every tree over
// the whole block with a kernel chosen for the model's shape.
//
// # Features
//
//   - Block binarization of float, one-hot and categorical statistic features
//   - Specialized kernels for single-example, scalar and multi-output models
//   - Reusable binarized features for repeated tree-range evaluation
//   - Staged predictions and learning curves
//   - Structured logging, Prometheus metrics and typed errors
//
// # Installation
//
//	go get github.com/YuminosukeSato/symforest
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/symforest/oblivious"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    model, err := oblivious.LoadModel("model.gob")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p, err := oblivious.NewPredictor(model, oblivious.WithWorkers(-1))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    X := mat.NewDense(2, 2, []float64{0.3, 1.7, 2.1, -0.4})
//	    proba, err := p.PredictProba(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(proba))
//	}
//
// Models with categorical statistic features need an oblivious.CtrProvider,
// passed with oblivious.WithCtrProvider.
//
// # Packages
//
//   - oblivious: Model description, evaluator, cached evaluator and predictor
//   - staged: Checkpoint scores and learning curves
//   - dataset: NumPy .npy input and output
//   - metrics: Evaluation metrics (RMSE, MAE, R², LogLoss, AUC, accuracy)
//   - core/model: Predictor interfaces and gob persistence
//   - core/parallel: Parallel processing utilities
//   - performance: Object pools and memory budgets
//   - pkg/log, pkg/errors, pkg/telemetry: Logging, errors and metrics
//
// # Configuration
//
// oblivious.LoadConfig reads block size, workers, log level and cache budget
// from YAML, overridden by the SYMFOREST_BLOCK_SIZE, SYMFOREST_WORKERS,
// SYMFOREST_LOG_LEVEL and SYMFOREST_CACHE_BUDGET_BYTES environment variables.
//
// # License
//
// symforest is released under the MIT License.
package symforest

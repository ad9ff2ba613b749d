package oblivious

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/symforest/pkg/errors"
	"github.com/YuminosukeSato/symforest/pkg/log"
)

// Predictor evaluates a model on gonum matrices whose columns are the flat
// feature indexes of the model. Categorical columns hold integer hashes.
type Predictor struct {
	evaluator *Evaluator
}

// NewPredictor builds an Evaluator for model and wraps it.
func NewPredictor(model *Model, opts ...Option) (*Predictor, error) {
	e, err := NewEvaluator(model, opts...)
	if err != nil {
		return nil, err
	}
	return &Predictor{evaluator: e}, nil
}

// Evaluator returns the underlying evaluator.
func (p *Predictor) Evaluator() *Evaluator {
	return p.evaluator
}

func (p *Predictor) accessors(X mat.Matrix) (FloatAccessor, CatAccessor, int, error) {
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, nil, 0, errors.WithStack(errors.ErrEmptyData)
	}
	model := p.evaluator.model
	if want := model.FlatFeatureCount(); cols < want {
		return nil, nil, 0, errors.NewDimensionError(log.OperationPredict, want, cols, 1)
	}
	var cats CatAccessor
	if len(model.CatFeatures) > 0 {
		cats = MatrixHashes(X, model)
	}
	return MatrixFloats(X), cats, rows, nil
}

// Predict returns the raw scores of all trees, one row per example and
// ApproxDimension columns.
func (p *Predictor) Predict(X mat.Matrix) (mat.Matrix, error) {
	return p.predictRaw(X)
}

func (p *Predictor) predictRaw(X mat.Matrix) (*mat.Dense, error) {
	floats, cats, rows, err := p.accessors(X)
	if err != nil {
		return nil, err
	}
	dim := p.evaluator.ApproxDimension()
	results := make([]float64, rows*dim)
	if err := p.evaluator.Calc(floats, cats, rows, 0, p.evaluator.TreeCount(), results); err != nil {
		return nil, err
	}
	return mat.NewDense(rows, dim, results), nil
}

// PredictProba maps raw scores to probabilities: the sigmoid of the single
// score for one-dimensional models, a softmax across outputs otherwise.
func (p *Predictor) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	raw, err := p.predictRaw(X)
	if err != nil {
		return nil, err
	}
	rows, dim := raw.Dims()
	data := raw.RawMatrix().Data
	if dim == 1 {
		for i, v := range data {
			data[i] = sigmoid(v)
		}
		return raw, nil
	}
	for i := 0; i < rows; i++ {
		softmaxInPlace(data[i*dim : (i+1)*dim])
	}
	return raw, nil
}

// PredictStaged returns, for every example, the raw score after each
// checkpoint of step trees: column j sums trees [0, min((j+1)*step, T)).
func (p *Predictor) PredictStaged(X mat.Matrix, step int) (*mat.Dense, error) {
	floats, cats, rows, err := p.accessors(X)
	if err != nil {
		return nil, err
	}
	intervals, err := p.evaluator.CalcTreeIntervals(floats, cats, rows, step)
	if err != nil {
		return nil, err
	}
	checkpoints := len(intervals[0])
	if checkpoints == 0 {
		return nil, errors.NewValueError(log.OperationPredict, "model has no trees")
	}
	staged := mat.NewDense(rows, checkpoints, nil)
	for i, row := range intervals {
		sum := 0.0
		for j, v := range row {
			sum += v
			staged.Set(i, j, sum)
		}
	}
	return staged, nil
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	expX := math.Exp(x)
	return expX / (1.0 + expX)
}

func softmaxInPlace(x []float64) {
	maxVal := x[0]
	for _, v := range x[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for i, v := range x {
		x[i] = math.Exp(v - maxVal)
		sum += x[i]
	}
	for i := range x {
		x[i] /= sum
	}
}

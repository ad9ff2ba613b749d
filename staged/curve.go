// Package staged evaluates a model after every step trees and turns the
// checkpoints into learning curves.
package staged

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/symforest/metrics"
	"github.com/YuminosukeSato/symforest/oblivious"
	"github.com/YuminosukeSato/symforest/pkg/errors"
	"github.com/YuminosukeSato/symforest/pkg/log"
)

// Curve is a metric measured on the running sum of the first Trees[j] trees.
type Curve struct {
	Metric         string
	Step           int
	HigherIsBetter bool
	Trees          []int
	Scores         []float64
}

// Scores returns the running sums of the interval checkpoints: row doc,
// column j is the raw score of trees [0, min((j+1)*step, T)).
func Scores(e *oblivious.Evaluator, floats oblivious.FloatAccessor, cats oblivious.CatAccessor, docCount, step int) (*mat.Dense, error) {
	intervals, err := e.CalcTreeIntervals(floats, cats, docCount, step)
	if err != nil {
		return nil, err
	}
	if docCount == 0 || len(intervals[0]) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	checkpoints := len(intervals[0])
	staged := mat.NewDense(docCount, checkpoints, nil)
	for doc, row := range intervals {
		sum := 0.0
		for j, v := range row {
			sum += v
			staged.Set(doc, j, sum)
		}
	}
	return staged, nil
}

// LearningCurve measures metric against labels after every step trees.
func LearningCurve(e *oblivious.Evaluator, floats oblivious.FloatAccessor, cats oblivious.CatAccessor, labels []float64, step int, metric string) (*Curve, error) {
	start := time.Now()
	logger := log.GetLogger().With(log.ComponentKey, "staged")

	m, err := metrics.Lookup(metric)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	staged, err := Scores(e, floats, cats, len(labels), step)
	if err != nil {
		return nil, err
	}
	_, checkpoints := staged.Dims()

	yTrue := mat.NewVecDense(len(labels), labels)
	curve := &Curve{
		Metric:         m.Name,
		Step:           step,
		HigherIsBetter: m.HigherIsBetter,
		Trees:          make([]int, checkpoints),
		Scores:         make([]float64, checkpoints),
	}
	raw := make([]float64, len(labels))
	for j := 0; j < checkpoints; j++ {
		mat.Col(raw, j, staged)
		score, err := m.Evaluate(yTrue, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "checkpoint %d", j)
		}
		curve.Trees[j] = min((j+1)*step, e.TreeCount())
		curve.Scores[j] = score
	}

	if logger.Enabled(context.Background(), log.LevelDebug) {
		bestTrees, bestScore := curve.Best()
		logger.Debug("learning curve computed",
			log.ExamplesKey, len(labels),
			log.StepKey, step,
			log.TreesKey, e.TreeCount(),
			"metric", m.Name,
			"best_trees", bestTrees,
			"best_score", bestScore,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return curve, nil
}

// Best returns the checkpoint with the best score. Ties go to fewer trees.
func (c *Curve) Best() (trees int, score float64) {
	best := -1
	for j, s := range c.Scores {
		if math.IsNaN(s) {
			continue
		}
		if best < 0 || (c.HigherIsBetter && s > c.Scores[best]) || (!c.HigherIsBetter && s < c.Scores[best]) {
			best = j
		}
	}
	if best < 0 {
		return 0, math.NaN()
	}
	return c.Trees[best], c.Scores[best]
}

// Matrix returns the curve as a checkpoints x 2 matrix of (trees, score).
func (c *Curve) Matrix() *mat.Dense {
	m := mat.NewDense(len(c.Scores), 2, nil)
	for j, s := range c.Scores {
		m.Set(j, 0, float64(c.Trees[j]))
		m.Set(j, 1, s)
	}
	return m
}

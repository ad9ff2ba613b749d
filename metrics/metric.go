// Package metrics はモデル出力の評価指標を提供します。
//
// 各指標は正解ベクトルと予測ベクトルを比較する関数で、Lookup により名前から
// 取得できます。Metric.Link は生スコアを指標が期待する予測値に変換します。
package metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/YuminosukeSato/symforest/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Func は正解と予測を比較して1つのスコアを返す評価関数
type Func func(yTrue, yPred *mat.VecDense) (float64, error)

// Link は生スコアを評価関数の入力空間に写す関数
type Link func(raw float64) float64

// Metric は名前付きの評価指標
type Metric struct {
	Name           string
	Func           Func
	Link           Link // nil は恒等写像
	HigherIsBetter bool
}

// Identity は生スコアをそのまま返す
func Identity(raw float64) float64 { return raw }

// Sigmoid は生スコアを正例の確率に変換する
func Sigmoid(raw float64) float64 {
	if raw >= 0 {
		return 1 / (1 + math.Exp(-raw))
	}
	e := math.Exp(raw)
	return e / (1 + e)
}

// Threshold は生スコアが0を超えれば1、そうでなければ0を返す
func Threshold(raw float64) float64 {
	if raw > 0 {
		return 1
	}
	return 0
}

var registry = map[string]Metric{
	"rmse":     {Name: "rmse", Func: RMSE},
	"mse":      {Name: "mse", Func: MSE},
	"mae":      {Name: "mae", Func: MAE},
	"r2":       {Name: "r2", Func: R2Score, HigherIsBetter: true},
	"logloss":  {Name: "logloss", Func: BinaryLogLoss, Link: Sigmoid},
	"auc":      {Name: "auc", Func: AUC, Link: Sigmoid, HigherIsBetter: true},
	"accuracy": {Name: "accuracy", Func: Accuracy, Link: Threshold, HigherIsBetter: true},
	"error":    {Name: "error", Func: ClassificationError, Link: Threshold},
}

// Lookup は名前（大文字小文字を区別しない）から評価指標を返す
func Lookup(name string) (Metric, error) {
	m, ok := registry[strings.ToLower(name)]
	if !ok {
		return Metric{}, errors.NewValidationError("metric", "unknown metric, expected one of "+strings.Join(Names(), ", "), name)
	}
	return m, nil
}

// Names は登録済みの指標名をソートして返す
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate は生スコア raw に Link を適用してから評価する
func (m Metric) Evaluate(yTrue *mat.VecDense, raw []float64) (float64, error) {
	link := m.Link
	if link == nil {
		link = Identity
	}
	pred := make([]float64, len(raw))
	for i, v := range raw {
		pred[i] = link(v)
	}
	if len(pred) == 0 {
		return 0, errors.NewValueError(m.Name, "empty vector")
	}
	return m.Func(yTrue, mat.NewVecDense(len(pred), pred))
}

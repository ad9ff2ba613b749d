// Package model はsymforestの予測器が満たす共通インターフェースと、
// モデル記述の永続化を提供します。
package model

import "gonum.org/v1/gonum/mat"

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する生スコアを返す（行 = サンプル、列 = 出力次元）
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// ProbabilityPredictor は確率を出力できるモデルのインターフェース
type ProbabilityPredictor interface {
	Predictor

	// PredictProba は生スコアを確率に変換して返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// StagedPredictor は木の数を段階的に増やしたときの予測を返せるモデルのインターフェース
type StagedPredictor interface {
	// PredictStaged は step 本ごとのチェックポイントにおける累積スコアを返す
	PredictStaged(X mat.Matrix, step int) (*mat.Dense, error)
}

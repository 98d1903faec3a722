package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は n×1 の列ベクトル
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を n×1 の行列で返す
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is the contract every regressor in the harness satisfies.
// Hyperparameter search works only through this interface: it clones the
// base estimator, applies a candidate with SetParams and fits the clone.
type Estimator interface {
	Fitter
	Predictor
	ParameterGetter
	ParameterSetter

	// Clone returns an unfitted copy carrying the same hyperparameters.
	Clone() Estimator
}

// RandomStateSetter is implemented by estimators with internal randomness.
// The harness seeds them with the run seed before the search.
type RandomStateSetter interface {
	SetRandomState(seed int64)
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	// Coef は学習された重み（係数）を返す
	Coef() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}

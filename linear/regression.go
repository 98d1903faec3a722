package linear

import (
	"fmt"

	"github.com/YuminosukeSato/regbench/core/model"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression は最小二乗法による線形回帰モデル
//
// 係数はSVDによる最小ノルム解で求めるため、定数列や重複列を含む
// ランク落ちした計画行列でも学習できる。
type LinearRegression struct {
	fitted
	fitIntercept bool
}

// NewLinearRegression は新しい線形回帰モデルを作成する
//
// 使用例:
//
//	lr := linear.NewLinearRegression(linear.WithFitIntercept(false))
//	err := lr.Fit(X, y)
func NewLinearRegression(opts ...Option) *LinearRegression {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LinearRegression{
		fitted:       newFitted(),
		fitIntercept: cfg.fitIntercept,
	}
}

// Fit はモデルを訓練データで学習させる
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	Xc, yc, xMean, yMean, err := design("LinearRegression.Fit", X, y, lr.fitIntercept)
	if err != nil {
		return err
	}

	coef, err := lstsq("LinearRegression.Fit", Xc, yc)
	if err != nil {
		return err
	}

	rows, _ := X.Dims()
	return lr.finish(coef, xMean, yMean, rows)
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	return lr.predict("LinearRegression", X)
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	return lr.score("LinearRegression", X, y)
}

// GetParams returns the hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
	}
}

// SetParams sets hyperparameters by name.
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		switch name {
		case "fit_intercept":
			v, err := model.ParamBool(name, value)
			if err != nil {
				return err
			}
			lr.fitIntercept = v
		default:
			return model.UnknownParam("LinearRegression", name)
		}
	}
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (lr *LinearRegression) Clone() model.Estimator {
	return NewLinearRegression(WithFitIntercept(lr.fitIntercept))
}

// String returns a string representation of the model.
func (lr *LinearRegression) String() string {
	return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.fitIntercept)
}

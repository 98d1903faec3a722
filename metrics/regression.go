// Package metrics implements the regression scores reported by an
// evaluation run: mean squared error, mean absolute error and R².
package metrics

import (
	"math"

	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
//
// yTrue の分散がゼロの場合は scikit-learn と同じく、予測が完全一致なら 1、
// そうでなければ 0 を返し、UndefinedMetricWarning を発生させる。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	truth := make([]float64, n)
	for i := 0; i < n; i++ {
		truth[i] = yTrue.AtVec(i)
	}
	yMean := stat.Mean(truth, nil)

	// 全変動（TSS）と残差変動（RSS）を計算
	var tss, rss float64
	for i := 0; i < n; i++ {
		d := truth[i] - yMean
		r := truth[i] - yPred.AtVec(i)
		tss += d * d
		rss += r * r
	}

	if tss == 0 {
		score := 0.0
		if rss == 0 {
			score = 1.0
		}
		errors.Warn(errors.NewUndefinedMetricWarning("r2_score", "constant y_true", score))
		return score, nil
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// columnVector converts an n×1 matrix into a vector.
func columnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	if v, ok := m.(*mat.VecDense); ok {
		return v, nil
	}
	data := make([]float64, r)
	for i := range data {
		data[i] = m.At(i, 0)
	}
	return mat.NewVecDense(r, data), nil
}

func matrixPair(op string, yTrue, yPred mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	rTrue, _ := yTrue.Dims()
	rPred, _ := yPred.Dims()
	if rTrue != rPred {
		return nil, nil, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	t, err := columnVector(op, yTrue)
	if err != nil {
		return nil, nil, err
	}
	p, err := columnVector(op, yPred)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// MSEMatrix は行列形式の入力に対してMSEを計算する
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := matrixPair("MSEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return MSE(t, p)
}

// MAEMatrix は行列形式の入力に対してMAEを計算する
func MAEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := matrixPair("MAEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return MAE(t, p)
}

// R2ScoreMatrix は行列形式の入力に対してR²を計算する
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := matrixPair("R2ScoreMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return R2Score(t, p)
}

// Scores bundles the three metrics persisted for each data partition.
type Scores struct {
	R2  float64
	MSE float64
	MAE float64
}

// Regression computes R², MSE and MAE on n×1 truth and prediction matrices.
func Regression(yTrue, yPred mat.Matrix) (Scores, error) {
	t, p, err := matrixPair("Regression", yTrue, yPred)
	if err != nil {
		return Scores{}, err
	}
	var s Scores
	if s.R2, err = R2Score(t, p); err != nil {
		return Scores{}, err
	}
	if s.MSE, err = MSE(t, p); err != nil {
		return Scores{}, err
	}
	if s.MAE, err = MAE(t, p); err != nil {
		return Scores{}, err
	}
	return s, nil
}

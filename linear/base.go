// Package linear provides the linear regressors of the harness: ordinary
// least squares, ridge and lasso. All of them centre the data when fitting
// an intercept, so the intercept is never penalized.
package linear

import (
	"fmt"
	"math"
	"strings"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/core/parallel"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// fitted holds the learned parameters shared by every linear estimator.
type fitted struct {
	state     *model.StateManager
	coef      []float64
	intercept float64
}

func newFitted() fitted {
	return fitted{state: model.NewStateManager()}
}

// Coef は学習された重み係数を返す
func (f *fitted) Coef() []float64 {
	if f.coef == nil {
		return nil
	}
	coef := make([]float64, len(f.coef))
	copy(coef, f.coef)
	return coef
}

// Intercept は学習された切片を返す
func (f *fitted) Intercept() float64 {
	return f.intercept
}

// IsFitted returns whether the model has been fitted
func (f *fitted) IsFitted() bool {
	return f.state.IsFitted()
}

// NonZero returns the number of non-zero coefficients.
func (f *fitted) NonZero() int {
	n := 0
	for _, c := range f.coef {
		if c != 0 {
			n++
		}
	}
	return n
}

// predict computes X·coef + intercept.
func (f *fitted) predict(name string, X mat.Matrix) (mat.Matrix, error) {
	if err := f.state.RequireFitted(name, "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := f.state.RequireFeatures(name+".Predict", cols); err != nil {
		return nil, err
	}

	predictions := mat.NewDense(rows, 1, nil)
	parallel.Chunks(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := f.intercept
			for j := 0; j < cols; j++ {
				pred += X.At(i, j) * f.coef[j]
			}
			predictions.Set(i, 0, pred)
		}
	})
	return predictions, nil
}

// score returns R² of the predictions on X against y.
func (f *fitted) score(name string, X, y mat.Matrix) (float64, error) {
	pred, err := f.predict(name, X)
	if err != nil {
		return 0, err
	}
	rows, _ := y.Dims()
	var yMean float64
	for i := 0; i < rows; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(rows)

	var ssTot, ssRes float64
	for i := 0; i < rows; i++ {
		d := y.At(i, 0) - yMean
		r := y.At(i, 0) - pred.At(i, 0)
		ssTot += d * d
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0, errors.NewValueError(name+".Score", "Cannot compute score with zero variance in y_true")
	}
	return 1.0 - ssRes/ssTot, nil
}

// finish stores the solution of the centred problem and marks the model fitted.
func (f *fitted) finish(coef, xMean []float64, yMean float64, nSamples int) error {
	if err := errors.CheckNumericalStability("linear.fit", coef, 0); err != nil {
		return err
	}
	f.coef = coef
	f.intercept = yMean
	for j, m := range xMean {
		f.intercept -= m * coef[j]
	}
	f.state.SetDimensions(len(coef), nSamples)
	f.state.SetFitted()
	return nil
}

// Equation renders the fitted model as "b + w0*x0 + w1*x1 ...", skipping
// zero coefficients. names overrides the default xj feature names.
func (f *fitted) Equation(names []string) string {
	var sb strings.Builder
	sb.WriteString(formatFloat(f.intercept))
	for j, c := range f.coef {
		if c == 0 {
			continue
		}
		name := fmt.Sprintf("x%d", j)
		if j < len(names) {
			name = names[j]
		}
		if c < 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		sb.WriteString(formatFloat(math.Abs(c)))
		sb.WriteString("*")
		sb.WriteString(name)
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

// design validates the training data and returns X and y as dense copies,
// centred when fitIntercept is set, along with the means that were removed.
func design(op string, X, y mat.Matrix, fitIntercept bool) (*mat.Dense, *mat.VecDense, []float64, float64, error) {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return nil, nil, nil, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return nil, nil, nil, 0, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, nil, nil, 0, errors.NewValueError(op, "y must be a column vector")
	}

	Xc := mat.DenseCopyOf(X)
	yc := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yc.SetVec(i, y.At(i, 0))
	}

	xMean := make([]float64, cols)
	var yMean float64
	if !fitIntercept {
		return Xc, yc, xMean, 0, nil
	}

	for i := 0; i < rows; i++ {
		yMean += yc.AtVec(i)
		for j := 0; j < cols; j++ {
			xMean[j] += Xc.At(i, j)
		}
	}
	yMean /= float64(rows)
	for j := range xMean {
		xMean[j] /= float64(rows)
	}

	parallel.Chunks(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			yc.SetVec(i, yc.AtVec(i)-yMean)
			for j := 0; j < cols; j++ {
				Xc.Set(i, j, Xc.At(i, j)-xMean[j])
			}
		}
	})
	return Xc, yc, xMean, yMean, nil
}

// lstsq returns the minimum-norm least squares solution of A·x = b using
// the SVD, so rank-deficient designs (constant or duplicated columns) are
// solved instead of rejected.
func lstsq(op string, A mat.Matrix, b *mat.VecDense) ([]float64, error) {
	rows, cols := A.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDThin); !ok {
		return nil, errors.NewModelError(op, "SVD factorization failed", errors.ErrSingularMatrix)
	}

	rcond := float64(max(rows, cols)) * 2.220446049250313e-16
	rank := svd.Rank(rcond)
	coef := make([]float64, cols)
	if rank == 0 {
		return coef, nil
	}

	var x mat.Dense
	svd.SolveTo(&x, b, rank)
	for j := 0; j < cols; j++ {
		coef[j] = x.At(j, 0)
	}
	return coef, nil
}

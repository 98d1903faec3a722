package linear

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Lasso は L1 正則化付き線形回帰（座標降下法）
//
// 目的関数:
//
//	(1 / (2 * n_samples)) * ||y - Xw||^2_2 + alpha * ||w||_1
//
// max_iter 回のスイープで収束しなかった場合は ConvergenceWarning を発生させ、
// その時点の係数で学習を完了する。
type Lasso struct {
	fitted
	alpha        float64
	fitIntercept bool
	maxIter      int
	tol          float64

	nIter int
}

// NewLasso creates a Lasso regressor.
// Defaults: alpha=1, fit_intercept=true, max_iter=1000, tol=1e-4.
func NewLasso(opts ...Option) *Lasso {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Lasso{
		fitted:       newFitted(),
		alpha:        cfg.alpha,
		fitIntercept: cfg.fitIntercept,
		maxIter:      cfg.maxIter,
		tol:          cfg.tol,
	}
}

// Fit runs cyclic coordinate descent from a zero start.
func (l *Lasso) Fit(X, y mat.Matrix) error {
	if l.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", l.alpha)
	}
	if l.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", l.maxIter)
	}

	Xc, yc, xMean, yMean, err := design("Lasso.Fit", X, y, l.fitIntercept)
	if err != nil {
		return err
	}
	rows, cols := Xc.Dims()

	// 列ごとに連続したスライスで持つ
	columns := make([][]float64, cols)
	colNorm := make([]float64, cols)
	for j := 0; j < cols; j++ {
		columns[j] = mat.Col(nil, j, Xc)
		colNorm[j] = floats.Dot(columns[j], columns[j])
	}

	residual := make([]float64, rows)
	copy(residual, yc.RawVector().Data)

	coef := make([]float64, cols)
	threshold := l.alpha * float64(rows)
	converged := false

	l.nIter = 0
	for iter := 0; iter < l.maxIter; iter++ {
		l.nIter = iter + 1
		var maxDelta, maxCoef float64

		for j := 0; j < cols; j++ {
			if colNorm[j] == 0 {
				continue
			}
			old := coef[j]
			if old != 0 {
				floats.AddScaled(residual, old, columns[j])
			}

			rho := floats.Dot(columns[j], residual)
			coef[j] = softThreshold(rho, threshold) / colNorm[j]

			if coef[j] != 0 {
				floats.AddScaled(residual, -coef[j], columns[j])
			}
			maxDelta = math.Max(maxDelta, math.Abs(coef[j]-old))
			maxCoef = math.Max(maxCoef, math.Abs(coef[j]))
		}

		if err := errors.CheckNumericalStability("lasso.coordinate_descent", coef, iter); err != nil {
			return err
		}
		if maxCoef == 0 || maxDelta/maxCoef < l.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("Lasso", l.maxIter,
			fmt.Sprintf("Objective did not converge (tol=%g, alpha=%g).", l.tol, l.alpha)))
	}

	nSamples, _ := X.Dims()
	return l.finish(coef, xMean, yMean, nSamples)
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

// NIter returns the number of sweeps run by the last Fit.
func (l *Lasso) NIter() int {
	return l.nIter
}

// Predict returns X·coef + intercept.
func (l *Lasso) Predict(X mat.Matrix) (mat.Matrix, error) {
	return l.predict("Lasso", X)
}

// Score returns R² on the given data.
func (l *Lasso) Score(X, y mat.Matrix) (float64, error) {
	return l.score("Lasso", X, y)
}

// GetParams returns the hyperparameters.
func (l *Lasso) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         l.alpha,
		"fit_intercept": l.fitIntercept,
		"max_iter":      l.maxIter,
		"tol":           l.tol,
	}
}

// SetParams sets hyperparameters by name.
func (l *Lasso) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		var err error
		switch name {
		case "alpha":
			l.alpha, err = model.ParamFloat(name, value)
		case "fit_intercept":
			l.fitIntercept, err = model.ParamBool(name, value)
		case "max_iter":
			l.maxIter, err = model.ParamInt(name, value)
		case "tol":
			l.tol, err = model.ParamFloat(name, value)
		default:
			err = model.UnknownParam("Lasso", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (l *Lasso) Clone() model.Estimator {
	return NewLasso(
		WithAlpha(l.alpha),
		WithFitIntercept(l.fitIntercept),
		WithMaxIter(l.maxIter),
		WithTol(l.tol),
	)
}

func (l *Lasso) String() string {
	return fmt.Sprintf("Lasso(alpha=%g, max_iter=%d, tol=%g)", l.alpha, l.maxIter, l.tol)
}

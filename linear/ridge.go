package linear

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Ridge is least squares with an L2 penalty alpha·||w||².
//
// The penalized problem is solved as the ordinary least squares problem on
// the design augmented with sqrt(alpha)·I rows, which keeps the solver
// shared with LinearRegression.
type Ridge struct {
	fitted
	alpha        float64
	fitIntercept bool
}

// NewRidge creates a Ridge regressor. Defaults: alpha=1, fit_intercept=true.
func NewRidge(opts ...Option) *Ridge {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Ridge{
		fitted:       newFitted(),
		alpha:        cfg.alpha,
		fitIntercept: cfg.fitIntercept,
	}
}

// Fit learns the coefficients.
func (r *Ridge) Fit(X, y mat.Matrix) error {
	if r.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", r.alpha)
	}

	Xc, yc, xMean, yMean, err := design("Ridge.Fit", X, y, r.fitIntercept)
	if err != nil {
		return err
	}
	rows, cols := Xc.Dims()

	// [X; sqrt(alpha)·I] w = [y; 0]
	A := mat.NewDense(rows+cols, cols, nil)
	A.Slice(0, rows, 0, cols).(*mat.Dense).Copy(Xc)
	penalty := math.Sqrt(r.alpha)
	for j := 0; j < cols; j++ {
		A.Set(rows+j, j, penalty)
	}
	b := mat.NewVecDense(rows+cols, nil)
	b.SliceVec(0, rows).(*mat.VecDense).CopyVec(yc)

	coef, err := lstsq("Ridge.Fit", A, b)
	if err != nil {
		return err
	}

	nSamples, _ := X.Dims()
	return r.finish(coef, xMean, yMean, nSamples)
}

// Predict returns X·coef + intercept.
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	return r.predict("Ridge", X)
}

// Score returns R² on the given data.
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	return r.score("Ridge", X, y)
}

// GetParams returns the hyperparameters.
func (r *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         r.alpha,
		"fit_intercept": r.fitIntercept,
	}
}

// SetParams sets hyperparameters by name.
func (r *Ridge) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		switch name {
		case "alpha":
			v, err := model.ParamFloat(name, value)
			if err != nil {
				return err
			}
			r.alpha = v
		case "fit_intercept":
			v, err := model.ParamBool(name, value)
			if err != nil {
				return err
			}
			r.fitIntercept = v
		default:
			return model.UnknownParam("Ridge", name)
		}
	}
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (r *Ridge) Clone() model.Estimator {
	return NewRidge(WithAlpha(r.alpha), WithFitIntercept(r.fitIntercept))
}

func (r *Ridge) String() string {
	return fmt.Sprintf("Ridge(alpha=%g, fit_intercept=%t)", r.alpha, r.fitIntercept)
}

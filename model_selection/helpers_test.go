package model_selection

import (
	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// slopeEstimator fits y ≈ scale·b·x0 through the origin. It panics on Fit
// when explode is set, to exercise trial recovery, and raises a
// ConvergenceWarning on every Fit when warns is set.
type slopeEstimator struct {
	scale   float64
	explode bool
	warns   bool
	slope   float64
	fitted  bool
}

func (s *slopeEstimator) Fit(X, y mat.Matrix) error {
	if s.explode {
		panic("exploding candidate")
	}
	if s.warns {
		errors.Warn(errors.NewConvergenceWarning("slopeEstimator", 1, "always warns"))
	}
	r, _ := X.Dims()
	if r == 0 {
		return errors.ErrEmptyData
	}
	var xy, xx float64
	for i := 0; i < r; i++ {
		xy += X.At(i, 0) * y.At(i, 0)
		xx += X.At(i, 0) * X.At(i, 0)
	}
	s.slope = xy / xx
	s.fitted = true
	return nil
}

func (s *slopeEstimator) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.fitted {
		return nil, errors.NewNotFittedError("slopeEstimator", "Predict")
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, s.scale*s.slope*X.At(i, 0))
	}
	return out, nil
}

func (s *slopeEstimator) GetParams() map[string]interface{} {
	return map[string]interface{}{"scale": s.scale, "explode": s.explode}
}

func (s *slopeEstimator) SetParams(params map[string]interface{}) error {
	for k, v := range params {
		switch k {
		case "scale":
			f, err := model.ParamFloat(k, v)
			if err != nil {
				return err
			}
			s.scale = f
		case "explode":
			b, err := model.ParamBool(k, v)
			if err != nil {
				return err
			}
			s.explode = b
		default:
			return model.UnknownParam("slopeEstimator", k)
		}
	}
	return nil
}

func (s *slopeEstimator) Clone() model.Estimator {
	return &slopeEstimator{scale: s.scale, explode: s.explode, warns: s.warns}
}

// linearData returns n rows of (x, noise-free 2x) plus two constant columns.
func linearData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := float64(i%17) - 8 + float64(i)/float64(n)
		X.Set(i, 0, x)
		X.Set(i, 1, float64(i))
		X.Set(i, 2, 1)
		y.SetVec(i, 2*x)
	}
	return X, y
}

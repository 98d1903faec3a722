package preprocessing

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// AddTargetNoise adds zero-mean Gaussian noise with standard deviation
// fraction·‖y‖₂ to every element of y, in place. A zero fraction consumes
// no draws from rng.
func AddTargetNoise(y *mat.VecDense, fraction float64, rng *rand.Rand) error {
	if err := checkFraction("target_noise", fraction); err != nil || fraction == 0 {
		return err
	}

	n := y.Len()
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = y.AtVec(i)
	}

	normal := distuv.Normal{Mu: 0, Sigma: fraction * floats.Norm(values, 2), Src: rng}
	for i := 0; i < n; i++ {
		y.SetVec(i, values[i]+normal.Rand())
	}
	return nil
}

// AddFeatureNoise adds, column by column, zero-mean Gaussian noise with
// standard deviation fraction·‖X[:,j]‖₂ to every row of column j, in place.
// Columns are processed left to right so the draw order is fixed by the seed.
func AddFeatureNoise(X *mat.Dense, fraction float64, rng *rand.Rand) error {
	if err := checkFraction("feature_noise", fraction); err != nil || fraction == 0 {
		return err
	}

	r, c := X.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		normal := distuv.Normal{Mu: 0, Sigma: fraction * floats.Norm(col, 2), Src: rng}
		for i := 0; i < r; i++ {
			X.Set(i, j, col[i]+normal.Rand())
		}
	}
	return nil
}

func checkFraction(name string, fraction float64) error {
	if fraction < 0 || fraction != fraction {
		return errors.NewValidationError(name, "noise fraction must be >= 0", fraction)
	}
	return nil
}

package preprocessing

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestZeroNoiseIsNoOp(t *testing.T) {
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	yOrig := mat.VecDenseCopyOf(y)
	XOrig := mat.DenseCopyOf(X)

	rng := newRNG(42)
	require.NoError(t, AddTargetNoise(y, 0, rng))
	require.NoError(t, AddFeatureNoise(X, 0, rng))

	assert.True(t, mat.Equal(y, yOrig))
	assert.True(t, mat.Equal(X, XOrig))

	// no draws were consumed
	assert.Equal(t, newRNG(42).Uint64(), rng.Uint64())
}

func TestNoiseIsSeeded(t *testing.T) {
	run := func() (*mat.VecDense, *mat.Dense) {
		rng := newRNG(7)
		y := mat.NewVecDense(5, []float64{1, -1, 2, -2, 0.5})
		X := mat.NewDense(5, 2, []float64{1, 0, 2, 0, 3, 0, 4, 0, 5, 0})
		require.NoError(t, AddTargetNoise(y, 0.1, rng))
		require.NoError(t, AddFeatureNoise(X, 0.1, rng))
		return y, X
	}

	y1, X1 := run()
	y2, X2 := run()
	assert.True(t, mat.Equal(y1, y2))
	assert.True(t, mat.Equal(X1, X2))

	// an all-zero column has zero norm and therefore zero noise
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0.0, X1.At(i, 1))
	}
	// the first column was perturbed
	assert.False(t, mat.Equal(X1.ColView(0), mat.NewVecDense(5, []float64{1, 2, 3, 4, 5})))
}

func TestNegativeNoiseFraction(t *testing.T) {
	y := mat.NewVecDense(2, []float64{1, 2})
	assert.Error(t, AddTargetNoise(y, -0.1, newRNG(1)))
	assert.Error(t, AddFeatureNoise(mat.NewDense(1, 1, []float64{1}), -1, newRNG(1)))
}

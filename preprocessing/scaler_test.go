package preprocessing

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStandardScalerFit(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})

	s := NewStandardScalerDefault()
	require.NoError(t, s.Fit(X))

	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	// zero-variance column keeps scale 1
	assert.Equal(t, 10.0, s.Mean[1])
	assert.Equal(t, 1.0, s.Scale[1])

	Xs, err := s.Transform(X)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, Xs.At(i, 1))
	}
}

func TestStandardScalerTransformIsOrderIndependent(t *testing.T) {
	XTrain := mat.NewDense(5, 2, []float64{
		1, -2,
		3, 0,
		5, 4,
		7, 1,
		9, 2,
	})
	XTest := mat.NewDense(2, 2, []float64{
		4, 4,
		-1, 8,
	})

	a := NewStandardScalerDefault()
	require.NoError(t, a.Fit(XTrain))
	testFirst, err := a.Transform(XTest)
	require.NoError(t, err)
	_, err = a.Transform(XTrain)
	require.NoError(t, err)
	testAgain, err := a.Transform(XTest)
	require.NoError(t, err)

	b := NewStandardScalerDefault()
	_, err = b.FitTransform(XTrain)
	require.NoError(t, err)
	testAfterTrain, err := b.Transform(XTest)
	require.NoError(t, err)

	assert.True(t, mat.Equal(testFirst, testAgain))
	assert.True(t, mat.Equal(testFirst, testAfterTrain))
}

func TestStandardScalerInverseRoundTrip(t *testing.T) {
	y := mat.NewDense(6, 1, []float64{-3.5, 0, 12.25, 7, 1e3, -42})

	s := NewStandardScalerDefault()
	ys, err := s.FitTransform(y)
	require.NoError(t, err)
	back, err := s.InverseTransform(ys)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		assert.InDelta(t, y.At(i, 0), back.At(i, 0), 1e-9)
	}
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScalerDefault()

	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	assert.Error(t, s.Fit(&mat.Dense{}))
}

func TestStandardScalerWithoutMeanOrStd(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 6})

	s := NewStandardScaler(false, false)
	out, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, out))
	assert.Contains(t, s.String(), "n_features=1")
}

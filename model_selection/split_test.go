package model_selection

import (
	"sort"
	"testing"

	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTrainTestSplit200Rows(t *testing.T) {
	X, y := linearData(200)

	p, err := TrainTestSplit(X, y, DefaultTrainSize, 42)
	require.NoError(t, err)

	r, c := p.XTrain.Dims()
	assert.Equal(t, 150, r)
	assert.Equal(t, 3, c)
	r, _ = p.XTest.Dims()
	assert.Equal(t, 50, r)
	assert.Equal(t, 150, p.YTrain.Len())
	assert.Equal(t, 50, p.YTest.Len())

	drawn := Subsample(p, DefaultMaxSamples, NewRand(42))
	assert.False(t, drawn)
	r, _ = p.XTrain.Dims()
	assert.Equal(t, 150, r)

	// partitions are disjoint and cover every row
	all := append(append([]int{}, p.TrainIndices...), p.TestIndices...)
	sort.Ints(all)
	for i, v := range all {
		assert.Equal(t, i, v)
	}

	// rows follow their indices
	for i, src := range p.TestIndices {
		assert.Equal(t, y.AtVec(src), p.YTest.AtVec(i))
		assert.Equal(t, X.At(src, 1), p.XTest.At(i, 1))
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := linearData(31)

	a, err := TrainTestSplit(X, y, DefaultTrainSize, 7)
	require.NoError(t, err)
	b, err := TrainTestSplit(X, y, DefaultTrainSize, 7)
	require.NoError(t, err)
	c, err := TrainTestSplit(X, y, DefaultTrainSize, 8)
	require.NoError(t, err)

	assert.Equal(t, a.TestIndices, b.TestIndices)
	assert.True(t, mat.Equal(a.XTrain, b.XTrain))
	assert.NotEqual(t, a.TestIndices, c.TestIndices)
	// ceil(0.25*31) = 8
	assert.Len(t, a.TestIndices, 8)
	assert.Len(t, a.TrainIndices, 23)
}

func TestTrainTestSplitErrors(t *testing.T) {
	X, _ := linearData(10)

	_, err := TrainTestSplit(X, mat.NewVecDense(9, nil), DefaultTrainSize, 1)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = TrainTestSplit(X, mat.NewVecDense(10, nil), 1.0, 1)
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))

	_, err = TrainTestSplit(mat.NewDense(1, 1, []float64{1}), mat.NewVecDense(1, []float64{1}), DefaultTrainSize, 1)
	assert.Error(t, err)
}

func TestSubsampleBounds(t *testing.T) {
	X, y := linearData(200)
	p, err := TrainTestSplit(X, y, DefaultTrainSize, 42)
	require.NoError(t, err)
	testBefore := mat.DenseCopyOf(p.XTest)

	drawn := Subsample(p, 40, NewRand(42))
	require.True(t, drawn)

	r, _ := p.XTrain.Dims()
	assert.Equal(t, 40, r)
	assert.Equal(t, 40, p.YTrain.Len())
	require.Len(t, p.TrainIndices, 40)
	for i, src := range p.TrainIndices {
		assert.GreaterOrEqual(t, src, 0)
		assert.Less(t, src, 200)
		assert.Equal(t, y.AtVec(src), p.YTrain.AtVec(i))
		assert.Equal(t, X.At(src, 1), p.XTrain.At(i, 1))
	}
	assert.True(t, mat.Equal(testBefore, p.XTest))
}

func TestSubsampleDisabled(t *testing.T) {
	X, y := linearData(40)
	p, err := TrainTestSplit(X, y, DefaultTrainSize, 3)
	require.NoError(t, err)

	assert.False(t, Subsample(p, 0, NewRand(3)))
	assert.False(t, Subsample(p, 30, NewRand(3)))
	r, _ := p.XTrain.Dims()
	assert.Equal(t, 30, r)
}

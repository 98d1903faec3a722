// Package model_selection provides the resampling and hyperparameter search
// stages of an evaluation run: a seeded train/test split with optional
// bootstrap subsampling, shuffled k-fold cross-validation and a
// successive-halving grid search.
package model_selection

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxSamples is the default cap on training rows.
const DefaultMaxSamples = 10000

// DefaultTrainSize is the fraction of rows assigned to the training partition.
const DefaultTrainSize = 0.75

// Partition holds the four arrays produced by TrainTestSplit.
type Partition struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense

	// TrainIndices and TestIndices are row numbers into the original data.
	TrainIndices []int
	TestIndices  []int
}

// NewRand returns the PCG-backed generator used for every seeded draw.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// TrainTestSplit shuffles the rows with a generator keyed on seed and
// assigns ceil((1-trainSize)·n) of them to the test partition and the rest
// to the training partition.
func TrainTestSplit(X mat.Matrix, y *mat.VecDense, trainSize float64, seed int64) (*Partition, error) {
	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if !(trainSize > 0 && trainSize < 1) {
		return nil, errors.NewValidationError("train_size", "must be in (0, 1)", trainSize)
	}

	nTest := int(math.Ceil((1 - trainSize) * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, errors.NewValueError("TrainTestSplit",
			"too few samples to produce non-empty train and test partitions")
	}

	perm := NewRand(seed).Perm(n)
	testIdx := perm[:nTest]
	trainIdx := perm[nTest:]

	return &Partition{
		XTrain:       takeRows(X, trainIdx),
		XTest:        takeRows(X, testIdx),
		YTrain:       takeVec(y, trainIdx),
		YTest:        takeVec(y, testIdx),
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}, nil
}

// Subsample replaces the training partition with maxSamples rows drawn with
// replacement when it holds more than maxSamples rows. maxSamples <= 0
// disables the cap. The test partition is never touched. It reports whether
// a subsample was drawn.
func Subsample(p *Partition, maxSamples int, rng *rand.Rand) bool {
	nTrain, _ := p.XTrain.Dims()
	if maxSamples <= 0 || nTrain <= maxSamples {
		return false
	}

	idx := make([]int, maxSamples)
	for i := range idx {
		idx[i] = rng.IntN(nTrain)
	}

	original := make([]int, maxSamples)
	for i, k := range idx {
		original[i] = p.TrainIndices[k]
	}

	p.XTrain = takeRows(p.XTrain, idx)
	p.YTrain = takeVec(p.YTrain, idx)
	p.TrainIndices = original
	return true
}

// takeRows gathers the given rows of X, in order, into a new matrix.
func takeRows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	if len(idx) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(idx), c, nil)
	if d, ok := X.(mat.RawRowViewer); ok {
		for i, r := range idx {
			out.SetRow(i, d.RawRowView(r))
		}
		return out
	}
	for i, r := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

// takeVec gathers the given elements of y, in order, into a new vector.
func takeVec(y mat.Vector, idx []int) *mat.VecDense {
	if len(idx) == 0 {
		return &mat.VecDense{}
	}
	out := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		out.SetVec(i, y.AtVec(r))
	}
	return out
}

package model_selection

import (
	"sort"

	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// DefaultNSplits is the fold count of a normal run; test mode uses 2.
const DefaultNSplits = 5

// Splitter produces cross-validation folds over n samples.
type Splitter interface {
	Split(nSamples int) ([]Fold, error)
	GetNSplits() int
}

// Fold represents a single fold in cross-validation
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed int64) *KFold {
	if nSplits < 2 {
		nSplits = DefaultNSplits
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split generates train/test indices for each fold. The first n%k folds get
// one extra test sample. Both index lists of a fold are sorted ascending.
func (kf *KFold) Split(nSamples int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", kf.NSplits)
	}
	if nSamples < kf.NSplits {
		return nil, errors.NewValueError("KFold.Split",
			"cannot have number of splits greater than the number of samples")
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := NewRand(kf.RandomSeed)
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	inTest := make([]bool, nSamples)
	currentIdx := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[currentIdx:currentIdx+testSize])
		sort.Ints(testIndices)

		for _, idx := range testIndices {
			inTest[idx] = true
		}
		trainIndices := make([]int, 0, nSamples-testSize)
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				trainIndices = append(trainIndices, j)
			}
		}
		for _, idx := range testIndices {
			inTest[idx] = false
		}

		folds[i] = Fold{
			TrainIndices: trainIndices,
			TestIndices:  testIndices,
		}
		currentIdx += testSize
	}

	return folds, nil
}

package model_selection

import (
	"context"
	"math"
	"testing"

	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/YuminosukeSato/regbench/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearch(grid ParamGrid, nSplits int) (*HalvingGridSearchCV, *log.TestLogger) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	h := NewHalvingGridSearchCV(&slopeEstimator{scale: 1}, grid, NewKFold(nSplits, true, 42), 42)
	h.Logger = logger
	return h, logger
}

func TestHalvingEmptyGrid(t *testing.T) {
	X, y := linearData(150)
	h, _ := newSearch(ParamGrid{}, 5)

	require.NoError(t, h.Fit(context.Background(), X, y))

	assert.Equal(t, 1, h.NIterations)
	assert.Equal(t, []int{1}, h.NCandidates)
	assert.Equal(t, []int{150}, h.NResources)
	assert.Len(t, h.Trials(), 5)
	assert.Equal(t, 1, h.CVResults.Len())
	assert.Empty(t, h.BestParams)
	assert.Equal(t, 0, h.BestIndex)
	assert.InDelta(t, 1.0, h.BestScore, 1e-9)
	require.NotNil(t, h.BestEstimator)

	for _, tr := range h.Trials() {
		assert.False(t, tr.Failed)
		assert.Equal(t, 150, tr.NResources)
	}
}

func TestHalvingSchedule(t *testing.T) {
	X, y := linearData(150)
	grid := ParamGrid{"scale": {0.1, 0.5, 1.0, 1.5, 3.0}}
	h, _ := newSearch(grid, 5)

	require.NoError(t, h.Fit(context.Background(), X, y))

	// 5 candidates, factor 3: two rounds of 50 then 150 samples
	assert.Equal(t, 2, h.NIterations)
	assert.Equal(t, 50, h.MinResources)
	assert.Equal(t, []int{50, 150}, h.NResources)
	assert.Equal(t, []int{5, 2}, h.NCandidates)
	assert.Equal(t, 7, h.CVResults.Len())
	assert.Len(t, h.Trials(), 7*5)

	assert.Equal(t, 1.0, h.BestParams["scale"])
	assert.Equal(t, 1, h.CVResults.Iter[h.BestIndex])
	// the same candidate may tie with itself from round 0
	assert.LessOrEqual(t, h.CVResults.RankTestScore[h.BestIndex], 2)

	// the fold subsample in round 0 uses a third of each fold
	for _, tr := range h.Trials() {
		if tr.Iteration == 0 {
			assert.Equal(t, 50, tr.NResources)
		}
	}
}

func TestHalvingSuppressesFitWarnings(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	X, y := linearData(60)
	logger, _ := log.NewTestLogger(log.LevelDebug)
	h := NewHalvingGridSearchCV(&slopeEstimator{scale: 1, warns: true},
		ParamGrid{"scale": {0.5, 1.0}}, NewKFold(3, true, 42), 42)
	h.Logger = logger

	require.NoError(t, h.Fit(context.Background(), X, y))
	require.NotNil(t, h.BestEstimator)
	assert.Empty(t, warnings, "neither the trials nor the refit may leak warnings")

	// suppression ends with the search
	errors.Warn(errors.NewConvergenceWarning("after", 1, ""))
	assert.Len(t, warnings, 1)
}

func TestHalvingRecoversFromPanics(t *testing.T) {
	X, y := linearData(60)
	grid := ParamGrid{"explode": {true, false}}
	h, logger := newSearch(grid, 2)
	h.ErrorScore = 0

	require.NoError(t, h.Fit(context.Background(), X, y))

	assert.Equal(t, false, h.BestParams["explode"])
	failed := 0
	for _, tr := range h.Trials() {
		if tr.Failed {
			failed++
			assert.Equal(t, 0.0, tr.TestScore)
			assert.Equal(t, true, tr.Params["explode"])
		}
	}
	assert.Equal(t, 2, failed)
	assert.True(t, logger.ContainsMessage("fits failed out of a total of"))
}

func TestHalvingNaNScoresRankLast(t *testing.T) {
	X, y := linearData(60)
	grid := ParamGrid{"explode": {true, false}}
	h, _ := newSearch(grid, 2)
	h.ErrorScore = math.NaN()

	require.NoError(t, h.Fit(context.Background(), X, y))
	assert.Equal(t, false, h.BestParams["explode"])

	for i, p := range h.CVResults.Params {
		if p["explode"] == true {
			assert.True(t, math.IsNaN(h.CVResults.MeanTestScore[i]))
			assert.Equal(t, h.CVResults.Len(), h.CVResults.RankTestScore[i])
		}
	}
}

func TestHalvingTooFewSamples(t *testing.T) {
	X, y := linearData(6)
	h, _ := newSearch(ParamGrid{}, 5)
	assert.Error(t, h.Fit(context.Background(), X, y))
}

func TestHalvingBadParamIsTrialFailure(t *testing.T) {
	X, y := linearData(60)
	h, _ := newSearch(ParamGrid{"unknown": {1}}, 2)
	// the single candidate fails in every fold, and the refit surfaces the error
	assert.Error(t, h.Fit(context.Background(), X, y))
	for _, tr := range h.Trials() {
		assert.True(t, tr.Failed)
	}
}

func TestCVResultsMap(t *testing.T) {
	X, y := linearData(90)
	h, _ := newSearch(ParamGrid{"scale": {1.0, 2.0}}, 3)
	require.NoError(t, h.Fit(context.Background(), X, y))

	m := h.CVResults.Map()
	for _, key := range []string{
		"params", "param_scale", "iter", "n_resources",
		"split0_test_score", "split2_train_score",
		"mean_test_score", "std_test_score", "rank_test_score",
		"mean_fit_time", "std_score_time",
	} {
		assert.Contains(t, m, key)
	}
	assert.Len(t, m["param_scale"], h.CVResults.Len())
}

func TestIntLog(t *testing.T) {
	assert.Equal(t, 0, intLog(1, 3))
	assert.Equal(t, 0, intLog(2, 3))
	assert.Equal(t, 1, intLog(3, 3))
	assert.Equal(t, 1, intLog(8, 3))
	assert.Equal(t, 2, intLog(9, 3))
	assert.Equal(t, 27, intPow(3, 3))
}

package model_selection

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/core/parallel"
	"github.com/YuminosukeSato/regbench/metrics"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/YuminosukeSato/regbench/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// DefaultFactor is the elimination rate of successive halving.
const DefaultFactor = 3

// HalvingGridSearchCV searches a parameter grid with successive halving over
// the number of training samples. Every round fits all surviving candidates
// on a subsample of each fold, keeps the best 1/Factor of them by mean
// cross-validated R², and grows the subsample by Factor, until one round has
// used the full data or the candidates have been narrowed down.
//
// A trial whose fit, prediction or scoring fails (or panics) gets ErrorScore
// instead of aborting the search. Warnings raised by estimators during the
// search are suppressed.
type HalvingGridSearchCV struct {
	Estimator   model.Estimator
	ParamGrid   ParamGrid
	CV          Splitter
	Factor      int
	ErrorScore  float64
	NJobs       int
	RandomState int64
	Logger      log.Logger

	// Fitted attributes
	BestEstimator model.Estimator
	BestParams    map[string]interface{}
	BestScore     float64
	BestIndex     int
	CVResults     *CVResults
	NCandidates   []int
	NResources    []int
	NIterations   int
	MinResources  int
	MaxResources  int

	trials []Trial
}

// NewHalvingGridSearchCV creates a search with the harness defaults:
// factor 3, error score 0 and one job.
func NewHalvingGridSearchCV(est model.Estimator, grid ParamGrid, cv Splitter, seed int64) *HalvingGridSearchCV {
	return &HalvingGridSearchCV{
		Estimator:   est,
		ParamGrid:   grid,
		CV:          cv,
		Factor:      DefaultFactor,
		ErrorScore:  0,
		NJobs:       1,
		RandomState: seed,
		Logger:      log.GetLoggerWithName("model_selection"),
	}
}

// Trials returns one record per (candidate, fold, iteration) evaluated.
func (h *HalvingGridSearchCV) Trials() []Trial {
	return h.trials
}

type trialJob struct {
	row       int
	candidate int
	fold      int
}

// Fit runs the search on X, y and refits the best configuration on all rows.
func (h *HalvingGridSearchCV) Fit(ctx context.Context, X *mat.Dense, y *mat.VecDense) error {
	if h.Estimator == nil {
		return errors.NewValidationError("estimator", "must not be nil", nil)
	}
	if h.CV == nil {
		return errors.NewValidationError("cv", "must not be nil", nil)
	}
	if h.Factor < 2 {
		return errors.NewValidationError("factor", "must be at least 2", h.Factor)
	}
	if h.Logger == nil {
		h.Logger = log.GetLoggerWithName("model_selection")
	}

	nSamples, _ := X.Dims()
	if y.Len() != nSamples {
		return errors.NewDimensionError("HalvingGridSearchCV.Fit", nSamples, y.Len(), 0)
	}

	candidates, err := h.ParamGrid.Candidates()
	if err != nil {
		return err
	}
	baseFolds, err := h.CV.Split(nSamples)
	if err != nil {
		return err
	}

	if err := h.schedule(nSamples, len(candidates)); err != nil {
		return err
	}

	h.CVResults = newCVResults(h.CV.GetNSplits())
	h.trials = h.trials[:0]
	h.NCandidates = h.NCandidates[:0]
	h.NResources = h.NResources[:0]

	h.Logger.Info("Starting successive halving",
		log.CandidatesKey, len(candidates),
		log.FoldsKey, h.CV.GetNSplits(),
		"n_iterations", h.NIterations,
		"min_resources", h.MinResources,
		"max_resources", h.MaxResources,
		"factor", h.Factor,
	)

	alive := make([]int, len(candidates))
	for i := range alive {
		alive[i] = i
	}

	var lastRows []int
	failed, total := 0, 0
	err = errors.SuppressWarnings(func() error {
		for itr := 0; itr < h.NIterations; itr++ {
			nResources := h.MinResources
			for p := 0; p < itr; p++ {
				nResources *= h.Factor
			}
			if nResources > h.MaxResources {
				nResources = h.MaxResources
			}
			h.NResources = append(h.NResources, nResources)
			h.NCandidates = append(h.NCandidates, len(alive))

			h.Logger.Info("Search iteration",
				log.IterationKey, itr,
				log.CandidatesKey, len(alive),
				log.ResourcesKey, nResources,
			)

			folds := h.subsampleFolds(baseFolds, nResources, nSamples)

			rows := make([]int, len(alive))
			for i, c := range alive {
				rows[i] = h.CVResults.addRow(candidates[c], itr, nResources)
			}

			jobs := make([]trialJob, 0, len(alive)*len(folds))
			for i, c := range alive {
				for f := range folds {
					jobs = append(jobs, trialJob{row: rows[i], candidate: c, fold: f})
				}
			}
			results := make([]Trial, len(jobs))

			err := parallel.ForEach(ctx, len(jobs), h.NJobs, func(_ context.Context, j int) error {
				job := jobs[j]
				results[j] = h.runTrial(X, y, candidates[job.candidate], folds[job.fold], job, itr, nResources)
				return nil
			})
			if err != nil {
				return err
			}

			for _, tr := range results {
				total++
				if tr.Failed {
					failed++
				}
				h.CVResults.setSplit(tr.Row, tr.Fold, tr)
				h.trials = append(h.trials, tr)
			}
			for _, r := range rows {
				h.CVResults.finalizeRow(r)
			}

			lastRows = rows
			if itr == h.NIterations-1 {
				break
			}
			alive = h.topK(alive, rows, int(math.Ceil(float64(len(alive))/float64(h.Factor))))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		h.Logger.Warn(fmt.Sprintf("%d fits failed out of a total of %d; their scores were set to %g",
			failed, total, h.ErrorScore),
			log.ErrorCodeKey, log.ErrorFitFailed,
		)
	}

	h.CVResults.rank()

	best := lastRows[0]
	for _, r := range lastRows[1:] {
		if better(h.CVResults.MeanTestScore[r], h.CVResults.MeanTestScore[best]) {
			best = r
		}
	}
	h.BestIndex = best
	h.BestScore = h.CVResults.MeanTestScore[best]
	h.BestParams = copyParams(h.CVResults.Params[best])

	refit := h.Estimator.Clone()
	if err := refit.SetParams(h.BestParams); err != nil {
		return errors.Wrap(err, "refit: set best params")
	}
	if err := errors.SuppressWarnings(func() error { return refit.Fit(X, y) }); err != nil {
		return errors.Wrap(err, "refit best estimator")
	}
	h.BestEstimator = refit

	h.Logger.Info("Search finished",
		"best_index", h.BestIndex,
		"best_score", h.BestScore,
		log.HyperParamsKey, h.BestParams,
	)
	return nil
}

// schedule derives the resource schedule the way 'exhaust' halving does.
func (h *HalvingGridSearchCV) schedule(nSamples, nCandidates int) error {
	h.MaxResources = nSamples
	h.MinResources = 2 * h.CV.GetNSplits()

	nRequired := 1 + intLog(nCandidates, h.Factor)
	exhaust := h.MaxResources / intPow(h.Factor, nRequired-1)
	if exhaust > h.MinResources {
		h.MinResources = exhaust
	}
	if h.MinResources > h.MaxResources {
		return errors.NewValueError("HalvingGridSearchCV.Fit", fmt.Sprintf(
			"min_resources=%d is greater than max_resources=%d", h.MinResources, h.MaxResources))
	}

	nPossible := 1 + intLog(h.MaxResources/h.MinResources, h.Factor)
	h.NIterations = min(nPossible, nRequired)
	return nil
}

// subsampleFolds shrinks every fold to the fraction nResources/nSamples of
// its train and test indices, without replacement.
func (h *HalvingGridSearchCV) subsampleFolds(base []Fold, nResources, nSamples int) []Fold {
	if nResources >= nSamples {
		return base
	}
	fraction := float64(nResources) / float64(nSamples)
	out := make([]Fold, len(base))
	for i, f := range base {
		out[i] = Fold{
			TrainIndices: h.resample(f.TrainIndices, fraction),
			TestIndices:  h.resample(f.TestIndices, fraction),
		}
	}
	return out
}

func (h *HalvingGridSearchCV) resample(idx []int, fraction float64) []int {
	k := int(fraction * float64(len(idx)))
	perm := NewRand(h.RandomState).Perm(len(idx))
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = idx[perm[i]]
	}
	return out
}

// runTrial fits one candidate on one fold and scores it on both sides.
func (h *HalvingGridSearchCV) runTrial(X *mat.Dense, y *mat.VecDense, params map[string]interface{},
	fold Fold, job trialJob, itr, nResources int) Trial {

	tr := Trial{
		Row:        job.row,
		Candidate:  job.candidate,
		Fold:       job.fold,
		Iteration:  itr,
		NResources: nResources,
		Params:     params,
	}

	var est model.Estimator
	fitStart := time.Now()
	err := errors.SafeExecute(fmt.Sprintf("fit candidate %d fold %d", job.candidate, job.fold), func() error {
		est = h.Estimator.Clone()
		if err := est.SetParams(params); err != nil {
			return err
		}
		return est.Fit(takeRows(X, fold.TrainIndices), takeVec(y, fold.TrainIndices))
	})
	tr.FitTime = time.Since(fitStart).Seconds()

	if err == nil {
		scoreStart := time.Now()
		err = errors.SafeExecute(fmt.Sprintf("score candidate %d fold %d", job.candidate, job.fold), func() error {
			var serr error
			if tr.TestScore, serr = r2(est, X, y, fold.TestIndices); serr != nil {
				return serr
			}
			tr.TrainScore, serr = r2(est, X, y, fold.TrainIndices)
			return serr
		})
		tr.ScoreTime = time.Since(scoreStart).Seconds()
	}

	if err != nil {
		tr.Failed = true
		tr.TestScore = h.ErrorScore
		tr.TrainScore = h.ErrorScore
		w := errors.NewFitFailedWarning(job.candidate, job.fold, itr, h.ErrorScore, err)
		h.Logger.Debug("Trial failed", "warning", w, log.ErrorCodeKey, log.ErrorFitFailed)
	}
	return tr
}

func r2(est model.Estimator, X *mat.Dense, y *mat.VecDense, idx []int) (float64, error) {
	pred, err := est.Predict(takeRows(X, idx))
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(takeVec(y, idx), pred)
}

// topK keeps the k candidates with the highest mean test score. NaN scores
// rank last and ties keep the earlier candidate.
func (h *HalvingGridSearchCV) topK(alive, rows []int, k int) []int {
	order := make([]int, len(alive))
	for i := range order {
		order[i] = i
	}
	scores := h.CVResults.MeanTestScore
	sort.SliceStable(order, func(a, b int) bool {
		return better(scores[rows[order[a]]], scores[rows[order[b]]])
	})
	if k > len(order) {
		k = len(order)
	}
	kept := make([]int, k)
	for i := 0; i < k; i++ {
		kept[i] = alive[order[i]]
	}
	sort.Ints(kept)
	return kept
}

// better reports whether score a strictly beats b, with NaN losing to any number.
func better(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

// intLog returns floor(log_base(x)) for x >= 1, computed on integers.
func intLog(x, base int) int {
	k := 0
	for p := base; p <= x; p *= base {
		k++
	}
	return k
}

func intPow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

func copyParams(p map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

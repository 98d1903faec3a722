// Package benchmark runs one reproducible evaluation of a regression
// estimator on a dataset and persists the result record and the search
// trace.
//
// The pipeline is strictly sequential:
//
//	load → split → subsample → scale → noise → pre-train → search → score → persist
//
// A single seed drives the split, the subsample, the noise draws, the
// cross-validation shuffle, the halving subsamples and the estimator's own
// random_state, so two runs with the same inputs write identical records
// apart from the two timing fields.
package benchmark

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/core/parallel"
	"github.com/YuminosukeSato/regbench/dataset"
	"github.com/YuminosukeSato/regbench/methods"
	"github.com/YuminosukeSato/regbench/model_selection"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/YuminosukeSato/regbench/pkg/log"
	"github.com/YuminosukeSato/regbench/preprocessing"
)

// TestModeSplits is the fold count used in test mode.
const TestModeSplits = 2

// Evaluate resolves name in the default registry and runs the pipeline.
func Evaluate(ctx context.Context, datasetPath, name string, opts Options) (*Result, error) {
	plugin, err := methods.Default().Lookup(name)
	if err != nil {
		return nil, err
	}
	return EvaluatePlugin(ctx, datasetPath, name, plugin, opts)
}

// EvaluatePlugin runs the pipeline for an already resolved plugin.
func EvaluatePlugin(ctx context.Context, datasetPath, name string, plugin *methods.Plugin, opts Options) (*Result, error) {
	opts, applied := opts.applyEvalKwargs(plugin.EvalKwargs)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	defer parallel.SetMaxWorkers(parallel.SetMaxWorkers(opts.NJobs))

	datasetName := DatasetName(datasetPath)
	runLogger := log.GetLoggerWithName("benchmark").With(
		log.RunIDKey, uuid.NewString(),
		log.DatasetKey, datasetName,
		log.EstimatorIDKey, name,
		log.RandomSeedKey, opts.Seed,
	)

	banner := strings.Repeat("=", 40)
	runLogger.Info(banner)
	runLogger.Info("Evaluating "+name+" on "+datasetPath, log.TestModeKey, opts.Test)
	runLogger.Info(banner)
	if len(applied) > 0 {
		runLogger.Info("Applying plugin option overrides", "overrides", applied)
	}

	est := plugin.New()
	if rs, ok := est.(model.RandomStateSetter); ok {
		rs.SetRandomState(opts.Seed)
	}

	// データの準備
	ds, err := dataset.Load(datasetPath, dataset.WithLabel(opts.Label))
	if err != nil {
		return nil, err
	}
	nSamples, nFeatures := ds.Dims()
	runLogger.Info("Loaded dataset",
		log.PathKey, datasetPath,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)

	part, err := model_selection.TrainTestSplit(ds.X, ds.Y, opts.TrainSize, opts.Seed)
	if err != nil {
		return nil, err
	}

	rng := model_selection.NewRand(opts.Seed)
	nTrain, _ := part.XTrain.Dims()
	if model_selection.Subsample(part, opts.MaxSamples, rng) {
		runLogger.Info("Subsampling training data",
			log.PhaseKey, log.PhaseResampling,
			"from", nTrain,
			"to", opts.MaxSamples,
		)
	}

	prep, err := prepare(part, opts, rng, runLogger)
	if err != nil {
		return nil, err
	}

	if plugin.PreTrain != nil {
		runLogger.Info("Running pre-train hook", log.PhaseKey, log.PhasePreTrain)
		if err := plugin.PreTrain(est, prep.XTrain, prep.YTrain); err != nil {
			return nil, errors.Wrap(err, "pre_train")
		}
	}
	rows, cols := prep.XTrain.Dims()
	runLogger.Info("Training data ready", "X_train", []int{rows, cols}, "y_train", prep.YTrain.Len())

	// 探索の設定
	nSplits := model_selection.DefaultNSplits
	grid := plugin.HyperParams
	if opts.HyperParams != nil {
		grid = opts.HyperParams
	}
	if opts.Test {
		runLogger.Info("Test mode enabled", log.TestModeKey, true)
		nSplits = TestModeSplits
		grid = model_selection.ParamGrid{}
		if len(plugin.TestParams) > 0 {
			runLogger.Info("Applying reduced-cost parameters", log.HyperParamsKey, plugin.TestParams)
			if err := est.SetParams(plugin.TestParams); err != nil {
				return nil, errors.Wrap(err, "apply test parameters")
			}
		}
	}
	runLogger.Info("Hyperparameter grid", log.HyperParamsKey, map[string][]interface{}(grid))

	cv := model_selection.NewKFold(nSplits, true, opts.Seed)
	search := model_selection.NewHalvingGridSearchCV(est, grid, cv, opts.Seed)
	search.NJobs = opts.NJobs
	search.Logger = log.GetLoggerWithName("model_selection").With(
		log.DatasetKey, datasetName,
		log.EstimatorIDKey, name,
		log.RandomSeedKey, opts.Seed,
	)

	cpu0 := processTime()
	wall0 := time.Now()
	if err := search.Fit(ctx, prep.XTrain, prep.YTrain); err != nil {
		return nil, errors.Wrap(err, "search")
	}
	cpu := (processTime() - cpu0).Seconds()
	wall := time.Since(wall0).Seconds()
	runLogger.Info("Training time measures",
		log.PhaseKey, log.PhaseSearch,
		log.ProcessSecondsKey, cpu,
		log.DurationSecondsKey, wall,
	)

	best := search.BestEstimator
	result := &Result{
		Dataset:     datasetName,
		Algorithm:   name,
		Params:      FilterParams(best.GetParams()),
		RandomState: opts.Seed,
		ProcessTime: cpu,
		TimeTime:    wall,
	}

	if result.ModelSize, err = plugin.ModelSize(best, nFeatures); err != nil {
		return nil, errors.Wrap(err, "complexity")
	}
	if result.SymbolicModel, err = plugin.RenderModel(best, prep.XTrain); err != nil {
		return nil, errors.Wrap(err, "model")
	}

	if err := result.score(best, prep.yScaler, prep.XTrain, part.YTrain, prep.XTest, part.YTest); err != nil {
		return nil, err
	}
	runLogger.Info("Scores",
		log.PhaseKey, log.PhaseScoring,
		log.R2ScoreKey, result.R2Test,
		log.MSEKey, result.MSETest,
		log.MAEKey, result.MAETest,
		"r2_train", result.R2Train,
		"model_size", result.ModelSize,
	)

	stem := Stem(opts.ResultsDir, datasetName, name, opts.Seed)
	runLogger.Info("Saving results", log.PhaseKey, log.PhasePersistence, log.PathKey, stem)
	if err := save(stem, result, search.CVResults.Map()); err != nil {
		return nil, err
	}

	if opts.Plot {
		result.PlotPath = stem + "_search.png"
		if err := PlotSearch(search.CVResults, name+" on "+datasetName, result.PlotPath); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// prepared holds the training data handed to the search.
type prepared struct {
	XTrain  *mat.Dense
	YTrain  *mat.VecDense
	XTest   *mat.Dense
	yScaler *preprocessing.StandardScaler
}

// prepare scales and perturbs copies of the partition. The partition itself
// keeps the labels in their original units for scoring.
func prepare(part *model_selection.Partition, opts Options, rng *rand.Rand, logger log.Logger) (*prepared, error) {
	p := &prepared{
		XTrain: mat.DenseCopyOf(part.XTrain),
		YTrain: mat.VecDenseCopyOf(part.YTrain),
		XTest:  part.XTest,
	}

	if opts.ScaleX {
		logger.Info("Scaling X", log.PhaseKey, log.PhaseScaling)
		sc := preprocessing.NewStandardScalerDefault()
		XTrain, err := sc.FitTransform(part.XTrain)
		if err != nil {
			return nil, errors.Wrap(err, "scale X")
		}
		XTest, err := sc.Transform(part.XTest)
		if err != nil {
			return nil, errors.Wrap(err, "scale X")
		}
		p.XTrain = mat.DenseCopyOf(XTrain)
		p.XTest = mat.DenseCopyOf(XTest)
	}

	if opts.ScaleY {
		logger.Info("Scaling y", log.PhaseKey, log.PhaseScaling)
		column := mat.NewDense(part.YTrain.Len(), 1, mat.Col(nil, 0, part.YTrain))
		p.yScaler = preprocessing.NewStandardScalerDefault()
		scaled, err := p.yScaler.FitTransform(column)
		if err != nil {
			return nil, errors.Wrap(err, "scale y")
		}
		p.YTrain = mat.VecDenseCopyOf(mat.DenseCopyOf(scaled).ColView(0))
	}

	if opts.TargetNoise > 0 {
		logger.Info("Adding noise to target", log.PhaseKey, log.PhaseNoise, log.NoiseKey, opts.TargetNoise)
	}
	if err := preprocessing.AddTargetNoise(p.YTrain, opts.TargetNoise, rng); err != nil {
		return nil, err
	}
	if opts.FeatureNoise > 0 {
		logger.Info("Adding noise to features", log.PhaseKey, log.PhaseNoise, log.NoiseKey, opts.FeatureNoise)
	}
	if err := preprocessing.AddFeatureNoise(p.XTrain, opts.FeatureNoise, rng); err != nil {
		return nil, err
	}
	return p, nil
}

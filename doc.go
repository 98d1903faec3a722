// Package regbench is a reproducible benchmarking harness for regression
// methods, written for sweeps over PMLB-style datasets where every
// (dataset, method, seed) triple is one independent run.
//
// One run loads a dataset, splits it 75/25, optionally subsamples and
// perturbs the training partition, tunes the method with successive-halving
// grid search under k-fold cross-validation, and writes two JSON files: the
// result record and the full search trace.
//
// # Features
//
//   - Deterministic: one seed drives every random draw, so repeated runs
//     produce identical records apart from the timing fields
//   - Plugin registry: linear, ridge, lasso, tree and genetic out of the box
//   - Noise injection: Gaussian noise on the target and on the features,
//     scaled by the L2 norm of each column
//   - Compressed inputs: .tsv, .csv, .gz and .zst
//   - Structured logging with zerolog and stack-carrying errors
//
// # Quick Start
//
// From the command line:
//
//	evaluate data/192_vineyard.tsv.gz --ml ridge --seed 7 --target_noise 0.1
//
// From Go:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/regbench/benchmark"
//	)
//
//	func main() {
//	    opts := benchmark.DefaultOptions()
//	    opts.Seed = 7
//
//	    result, err := benchmark.Evaluate(context.Background(),
//	        "data/192_vineyard.tsv.gz", "ridge", opts)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.R2Test, result.SymbolicModel)
//	}
//
// # Packages
//
//   - benchmark: the evaluation pipeline, result record and persistence
//   - methods: estimator plugins and the static registry
//   - dataset: label-column dataset loader
//   - model_selection: train/test split, k-fold, successive halving
//   - preprocessing: StandardScaler and noise injection
//   - metrics: MSE, MAE and R²
//   - linear, tree, genetic: the built-in estimators
//   - core/model: estimator interfaces, params, fitted state
//   - core/parallel: parallel processing utilities
//   - pkg/log, pkg/errors: logging and error handling
//
// # Outputs
//
// Each run writes {results_dir}/{dataset}_{method}_{seed}.json and
// {results_dir}/{dataset}_{method}_{seed}_cv_results.json. Non-finite
// numbers are written as null.
package regbench

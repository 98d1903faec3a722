// Command evaluate runs one benchmark evaluation of a registered regression
// estimator on a PMLB-style dataset file.
//
//	evaluate data/192_vineyard.tsv.gz --ml ridge --seed 7 --target_noise 0.1
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/regbench/benchmark"
	"github.com/YuminosukeSato/regbench/methods"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/YuminosukeSato/regbench/pkg/log"
)

type flags struct {
	ml           string
	resultsPath  string
	seed         int64
	test         bool
	targetNoise  float64
	featureNoise float64
	nSamples     int
	label        string
	nJobs        int
	plot         bool
	config       string
	logLevel     string
	logPretty    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	defaults := benchmark.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "evaluate INPUT_FILE",
		Short: "Evaluate a regression method on a dataset",
		Long: "Evaluate a regression method on a dataset with successive-halving grid search.\n\n" +
			"Available methods: " + strings.Join(methods.Default().Names(), ", "),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.SetupLogger(f.logLevel, f.logPretty); err != nil {
				return err
			}
			logger := log.GetLoggerWithName("cmd")

			opts, err := resolveOptions(cmd, f)
			if err != nil {
				logger.Error("Invalid configuration", log.ErrAttr(err)...)
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			result, err := benchmark.Evaluate(ctx, args[0], f.ml, opts)
			if err != nil {
				logger.Error("Evaluation failed", log.ErrAttr(err)...)
				return err
			}
			logger.Info("Evaluation finished",
				log.PathKey, result.ResultPath,
				log.R2ScoreKey, result.R2Test,
			)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.ml, "ml", "", "Name of estimator (see the list above)")
	fs.StringVar(&f.resultsPath, "results_path", defaults.ResultsDir, "Name of save file")
	fs.Int64Var(&f.seed, "seed", defaults.Seed, "Seed")
	fs.BoolVar(&f.test, "test", false, "Run in test mode (2 folds, no grid, reduced-cost parameters)")
	fs.Float64Var(&f.targetNoise, "target_noise", 0, "Gaussian noise to add to the target, as a fraction of its L2 norm")
	fs.Float64Var(&f.featureNoise, "feature_noise", 0, "Gaussian noise to add to the features, as a fraction of each column L2 norm")
	fs.IntVar(&f.nSamples, "n_samples", defaults.MaxSamples, "Maximum number of training samples (0 disables subsampling)")
	fs.StringVar(&f.label, "label", defaults.Label, "Name of the label column")
	fs.IntVar(&f.nJobs, "n_jobs", defaults.NJobs, "Worker cap for the search and estimator internals; above 1, process_time and time_time are not comparable across runs")
	fs.BoolVar(&f.plot, "plot", false, "Also write a chart of the search trace")
	fs.StringVar(&f.config, "config", "", "YAML file with run options; explicit flags take precedence")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&f.logPretty, "log-pretty", false, "Human readable log output instead of JSON")
	_ = cmd.MarkFlagRequired("ml")

	return cmd
}

// resolveOptions layers defaults, the optional YAML file and the flags that
// were set explicitly on the command line.
func resolveOptions(cmd *cobra.Command, f flags) (benchmark.Options, error) {
	opts := benchmark.DefaultOptions()
	if f.config != "" {
		var err error
		if opts, err = benchmark.LoadOptions(f.config, opts); err != nil {
			return opts, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("results_path") {
		opts.ResultsDir = f.resultsPath
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("test") {
		opts.Test = f.test
	}
	if changed("target_noise") {
		opts.TargetNoise = f.targetNoise
	}
	if changed("feature_noise") {
		opts.FeatureNoise = f.featureNoise
	}
	if changed("n_samples") {
		opts.MaxSamples = f.nSamples
		opts.Explicit = append(opts.Explicit, "n_samples")
	}
	if changed("label") {
		opts.Label = f.label
	}
	if changed("n_jobs") {
		opts.NJobs = f.nJobs
	}
	if changed("plot") {
		opts.Plot = f.plot
	}

	if err := opts.Validate(); err != nil {
		return opts, errors.Wrap(err, "options")
	}
	return opts, nil
}

package benchmark

import (
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/regbench/dataset"
	"github.com/YuminosukeSato/regbench/methods"
	"github.com/YuminosukeSato/regbench/model_selection"
	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// Options controls one evaluation run. Zero values are not meaningful;
// start from DefaultOptions.
type Options struct {
	// ResultsDir receives the two JSON artifacts.
	ResultsDir string `yaml:"results_dir" json:"results_dir" validate:"required"`

	// Seed drives every random draw of the run.
	Seed int64 `yaml:"seed" json:"seed"`

	// Test enables the cheap end-to-end mode: 2 folds, empty grid and the
	// plugin's reduced-cost parameters.
	Test bool `yaml:"test" json:"test"`

	TargetNoise  float64 `yaml:"target_noise" json:"target_noise" validate:"gte=0"`
	FeatureNoise float64 `yaml:"feature_noise" json:"feature_noise" validate:"gte=0"`

	// MaxSamples caps the training partition; 0 disables the cap.
	MaxSamples int `yaml:"n_samples" json:"n_samples" validate:"gte=0"`

	ScaleX bool `yaml:"scale_x" json:"scale_x"`
	ScaleY bool `yaml:"scale_y" json:"scale_y"`

	TrainSize float64 `yaml:"train_size" json:"train_size" validate:"gt=0,lt=1"`

	// Label is the label column of the dataset.
	Label string `yaml:"label" json:"label" validate:"required"`

	// NJobs caps the concurrency of the search and of estimator internals.
	// Timings are only comparable between runs at 1.
	NJobs int `yaml:"n_jobs" json:"n_jobs" validate:"gte=1"`

	// Plot additionally writes {stem}_search.png.
	Plot bool `yaml:"plot" json:"plot"`

	// HyperParams replaces the plugin grid when set.
	HyperParams model_selection.ParamGrid `yaml:"hyper_params,omitempty" json:"hyper_params,omitempty"`

	// Explicit lists option keys given on the command line. Plugin
	// EvalKwargs never override them.
	Explicit []string `yaml:"-" json:"-"`
}

// DefaultOptions returns the defaults of the command line.
func DefaultOptions() Options {
	return Options{
		ResultsDir: "results_test",
		Seed:       42,
		MaxSamples: model_selection.DefaultMaxSamples,
		ScaleX:     true,
		ScaleY:     true,
		TrainSize:  model_selection.DefaultTrainSize,
		Label:      dataset.DefaultLabel,
		NJobs:      1,
	}
}

var validate = validator.New()

// Validate checks the option ranges.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fe.Field(), "failed '"+fe.Tag()+"' check", fe.Value())
		}
		return errors.Wrap(err, "invalid options")
	}
	return nil
}

// LoadOptions overlays the YAML file at path on base. Keys absent from the
// file keep the value from base.
func LoadOptions(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errors.Wrapf(err, "read config %s", path)
	}
	opts := base
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return base, errors.Wrapf(err, "parse config %s", path)
	}
	return opts, nil
}

// WithEvalKwargs applies the plugin's pipeline overrides, except for keys
// listed in Explicit.
func (o Options) WithEvalKwargs(kw methods.EvalKwargs) Options {
	o, _ = o.applyEvalKwargs(kw)
	return o
}

// applyEvalKwargs is WithEvalKwargs that also reports the values it changed,
// keyed like the YAML file.
func (o Options) applyEvalKwargs(kw methods.EvalKwargs) (Options, map[string]interface{}) {
	applied := map[string]interface{}{}
	if kw.MaxSamples != nil && !o.explicit("n_samples") {
		o.MaxSamples = *kw.MaxSamples
		applied["n_samples"] = o.MaxSamples
	}
	if kw.ScaleX != nil && !o.explicit("scale_x") {
		o.ScaleX = *kw.ScaleX
		applied["scale_x"] = o.ScaleX
	}
	if kw.ScaleY != nil && !o.explicit("scale_y") {
		o.ScaleY = *kw.ScaleY
		applied["scale_y"] = o.ScaleY
	}
	return o, applied
}

func (o Options) explicit(key string) bool {
	return slices.Contains(o.Explicit, key)
}

// Package methods holds the estimator plugins the harness can evaluate and
// the static registry that resolves them by name.
//
// A plugin bundles a fresh estimator with its hyperparameter grid and the
// callbacks that report its size and render it as a formula. Plugins are
// registered once at startup; nothing is discovered at run time.
package methods

import (
	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/model_selection"
	"gonum.org/v1/gonum/mat"
)

// NotImplemented is the symbolic model reported when a plugin has no
// model callback.
const NotImplemented = "not implemented"

// EvalKwargs overrides pipeline options for one plugin. Nil fields keep the
// value from the configuration.
type EvalKwargs struct {
	MaxSamples *int  `yaml:"n_samples,omitempty" json:"n_samples,omitempty"`
	ScaleX     *bool `yaml:"scale_x,omitempty" json:"scale_x,omitempty"`
	ScaleY     *bool `yaml:"scale_y,omitempty" json:"scale_y,omitempty"`
}

// Plugin describes how to build, tune and report one estimator.
type Plugin struct {
	// New returns a fresh, unfitted estimator with default parameters.
	New func() model.Estimator

	// HyperParams is the grid searched by successive halving. An empty grid
	// evaluates the default configuration only.
	HyperParams model_selection.ParamGrid

	// Complexity reports the model size. Nil means the input feature count.
	Complexity func(est model.Estimator) (int, error)

	// Model renders the fitted estimator. At most one of Model and
	// ModelWithX is set; ModelWithX also receives the training features.
	Model      func(est model.Estimator) (string, error)
	ModelWithX func(est model.Estimator, X mat.Matrix) (string, error)

	// PreTrain runs once on the prepared training data before the search.
	PreTrain func(est model.Estimator, X mat.Matrix, y mat.Vector) error

	// TestParams is the reduced-cost configuration applied in test mode.
	TestParams map[string]interface{}

	// EvalKwargs overrides pipeline options for this plugin.
	EvalKwargs EvalKwargs
}

// RenderModel calls whichever model callback the plugin set.
func (p *Plugin) RenderModel(est model.Estimator, X mat.Matrix) (string, error) {
	switch {
	case p.ModelWithX != nil:
		return p.ModelWithX(est, X)
	case p.Model != nil:
		return p.Model(est)
	default:
		return NotImplemented, nil
	}
}

// ModelSize calls the complexity callback, falling back to nFeatures.
func (p *Plugin) ModelSize(est model.Estimator, nFeatures int) (int, error) {
	if p.Complexity == nil {
		return nFeatures, nil
	}
	return p.Complexity(est)
}

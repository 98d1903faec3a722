package methods

import (
	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/genetic"
	"github.com/YuminosukeSato/regbench/linear"
	"github.com/YuminosukeSato/regbench/model_selection"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/YuminosukeSato/regbench/tree"
	"gonum.org/v1/gonum/mat"
)

// linearModel is implemented by every estimator of the linear package.
type linearModel interface {
	NonZero() int
	Equation(names []string) string
}

func asLinear(est model.Estimator) (linearModel, error) {
	lm, ok := est.(linearModel)
	if !ok {
		return nil, errors.Newf("methods: %T is not a linear model", est)
	}
	return lm, nil
}

// linearComplexity counts the non-zero coefficients plus the intercept.
func linearComplexity(est model.Estimator) (int, error) {
	lm, err := asLinear(est)
	if err != nil {
		return 0, err
	}
	return lm.NonZero() + 1, nil
}

func linearEquation(est model.Estimator) (string, error) {
	lm, err := asLinear(est)
	if err != nil {
		return "", err
	}
	return lm.Equation(nil), nil
}

// Linear is ordinary least squares. There is nothing to tune.
func Linear() *Plugin {
	return &Plugin{
		New:         func() model.Estimator { return linear.NewLinearRegression() },
		HyperParams: model_selection.ParamGrid{},
		Complexity:  linearComplexity,
		Model:       linearEquation,
	}
}

// Ridge is L2-penalized least squares tuned over alpha.
func Ridge() *Plugin {
	return &Plugin{
		New: func() model.Estimator { return linear.NewRidge() },
		HyperParams: model_selection.ParamGrid{
			"alpha": {0.01, 0.1, 1.0, 10.0, 100.0},
		},
		Complexity: linearComplexity,
		Model:      linearEquation,
	}
}

// Lasso is L1-penalized least squares tuned over alpha.
func Lasso() *Plugin {
	return &Plugin{
		New: func() model.Estimator { return linear.NewLasso() },
		HyperParams: model_selection.ParamGrid{
			"alpha": {0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		Complexity: linearComplexity,
		Model:      linearEquation,
		TestParams: map[string]interface{}{"max_iter": 2},
	}
}

// Tree is a CART regressor tuned over depth and leaf size.
func Tree() *Plugin {
	return &Plugin{
		New: func() model.Estimator { return tree.NewDecisionTreeRegressor() },
		HyperParams: model_selection.ParamGrid{
			"max_depth":        {2, 4, 6, 8, 0},
			"min_samples_leaf": {1, 5},
		},
		Complexity: func(est model.Estimator) (int, error) {
			dt, ok := est.(*tree.DecisionTreeRegressor)
			if !ok {
				return 0, errors.Newf("methods: %T is not a decision tree", est)
			}
			return dt.NodeCount(), nil
		},
		ModelWithX: func(est model.Estimator, X mat.Matrix) (string, error) {
			dt, ok := est.(*tree.DecisionTreeRegressor)
			if !ok {
				return "", errors.Newf("methods: %T is not a decision tree", est)
			}
			return dt.Rules(X, nil)
		},
		TestParams: map[string]interface{}{"max_depth": 2},
	}
}

// Genetic is the evolutionary term-selection regressor. Training data is
// capped lower than the default because every fitness evaluation refits a
// least squares model.
func Genetic() *Plugin {
	maxSamples := 1000
	return &Plugin{
		New: func() model.Estimator { return genetic.NewGeneticRegressor() },
		HyperParams: model_selection.ParamGrid{
			"max_terms":     {3, 5, 8},
			"mutation_rate": {0.05, 0.2},
		},
		Complexity: func(est model.Estimator) (int, error) {
			g, ok := est.(*genetic.GeneticRegressor)
			if !ok {
				return 0, errors.Newf("methods: %T is not a genetic regressor", est)
			}
			return g.NTerms(), nil
		},
		Model: func(est model.Estimator) (string, error) {
			g, ok := est.(*genetic.GeneticRegressor)
			if !ok {
				return "", errors.Newf("methods: %T is not a genetic regressor", est)
			}
			return g.Equation(nil), nil
		},
		TestParams: map[string]interface{}{"popsize": 20, "generations": 2},
		EvalKwargs: EvalKwargs{MaxSamples: &maxSamples},
	}
}

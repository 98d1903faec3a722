package methods

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/linear"
	"github.com/YuminosukeSato/regbench/pkg/errors"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	assert.Equal(t, []string{"genetic", "lasso", "linear", "ridge", "tree"}, reg.Names())

	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := reg.Lookup(name)
			require.NoError(t, err)
			est := p.New()
			require.NotNil(t, est)

			_, err = p.HyperParams.Candidates()
			require.NoError(t, err)

			// 全ての候補値と TestParams が SetParams で受理されること
			for key, values := range p.HyperParams {
				for _, v := range values {
					assert.NoError(t, est.Clone().SetParams(map[string]interface{}{key: v}), "%s=%v", key, v)
				}
			}
			if p.TestParams != nil {
				assert.NoError(t, est.Clone().SetParams(p.TestParams))
			}
			assert.False(t, p.Model != nil && p.ModelWithX != nil, "at most one model callback")
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default().Lookup("xgboost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownEstimator))
	assert.Contains(t, err.Error(), "xgboost")
}

func TestRegister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("linear", Linear))
	assert.Error(t, reg.Register("linear", Linear))
	assert.Error(t, reg.Register("", Linear))
	assert.Error(t, reg.Register("nil", nil))

	require.NoError(t, reg.Register("broken", func() *Plugin { return &Plugin{} }))
	_, err := reg.Lookup("broken")
	assert.Error(t, err)

	// Lookup は毎回新しいプラグインを返す
	a, err := reg.Lookup("linear")
	require.NoError(t, err)
	b, err := reg.Lookup("linear")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestPluginDefaults(t *testing.T) {
	p := &Plugin{New: func() model.Estimator { return linear.NewLinearRegression() }}
	est := p.New()

	size, err := p.ModelSize(est, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, size)

	s, err := p.RenderModel(est, nil)
	require.NoError(t, err)
	assert.Equal(t, NotImplemented, s)
}

func TestBuiltinCallbacks(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	X := mat.NewDense(30, 2, nil)
	y := mat.NewVecDense(30, nil)
	for i := 0; i < 30; i++ {
		a, b := rng.Float64(), rng.Float64()
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		y.SetVec(i, 2*a-b+0.5)
	}

	t.Run("linear", func(t *testing.T) {
		p := Linear()
		est := p.New()
		require.NoError(t, est.Fit(X, y))

		size, err := p.ModelSize(est, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, size)

		s, err := p.RenderModel(est, X)
		require.NoError(t, err)
		assert.Equal(t, "0.5 + 2*x0 - 1*x1", s)
	})

	t.Run("tree", func(t *testing.T) {
		p := Tree()
		est := p.New()
		require.NoError(t, est.SetParams(map[string]interface{}{"max_depth": 1}))
		require.NoError(t, est.Fit(X, y))

		size, err := p.ModelSize(est, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, size)

		s, err := p.RenderModel(est, X)
		require.NoError(t, err)
		assert.Contains(t, s, "samples: ")
	})

	t.Run("genetic", func(t *testing.T) {
		p := Genetic()
		est := p.New()
		require.NoError(t, est.SetParams(p.TestParams))
		require.NoError(t, est.Fit(X, y))

		size, err := p.ModelSize(est, 2)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, size, 0)
		assert.LessOrEqual(t, size, 5)
		require.NotNil(t, p.EvalKwargs.MaxSamples)
		assert.Equal(t, 1000, *p.EvalKwargs.MaxSamples)
	})

	t.Run("wrong estimator type", func(t *testing.T) {
		_, err := Tree().ModelSize(linear.NewLinearRegression(), 2)
		assert.Error(t, err)
	})
}

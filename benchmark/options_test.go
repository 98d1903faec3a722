package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regbench/methods"
	"github.com/YuminosukeSato/regbench/pkg/errors"
)

func TestDefaultOptionsAreValid(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, "results_test", opts.ResultsDir)
	assert.Equal(t, int64(42), opts.Seed)
	assert.Equal(t, 10000, opts.MaxSamples)
	assert.Equal(t, 0.75, opts.TrainSize)
	assert.True(t, opts.ScaleX)
	assert.True(t, opts.ScaleY)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		param  string
	}{
		{"negative target noise", func(o *Options) { o.TargetNoise = -0.1 }, "TargetNoise"},
		{"negative feature noise", func(o *Options) { o.FeatureNoise = -1 }, "FeatureNoise"},
		{"train size of one", func(o *Options) { o.TrainSize = 1 }, "TrainSize"},
		{"zero train size", func(o *Options) { o.TrainSize = 0 }, "TrainSize"},
		{"empty results dir", func(o *Options) { o.ResultsDir = "" }, "ResultsDir"},
		{"empty label", func(o *Options) { o.Label = "" }, "Label"},
		{"no workers", func(o *Options) { o.NJobs = 0 }, "NJobs"},
		{"negative cap", func(o *Options) { o.MaxSamples = -5 }, "MaxSamples"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			require.Error(t, err)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	config := `results_dir: out
seed: 7
feature_noise: 0.25
n_samples: 500
hyper_params:
  alpha: [0.5, 2]
`
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))

	opts, err := LoadOptions(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "out", opts.ResultsDir)
	assert.Equal(t, int64(7), opts.Seed)
	assert.Equal(t, 0.25, opts.FeatureNoise)
	assert.Equal(t, 500, opts.MaxSamples)
	assert.Equal(t, []interface{}{0.5, 2}, opts.HyperParams["alpha"])

	// ファイルにないキーは既定値のまま
	assert.Equal(t, "target", opts.Label)
	assert.True(t, opts.ScaleY)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "absent.yaml"), DefaultOptions())
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("seed: [1, 2"), 0o644))
	_, err = LoadOptions(bad, DefaultOptions())
	assert.Error(t, err)
}

func TestWithEvalKwargs(t *testing.T) {
	limit, off := 1000, false
	opts := DefaultOptions().WithEvalKwargs(methods.EvalKwargs{MaxSamples: &limit, ScaleY: &off})
	assert.Equal(t, 1000, opts.MaxSamples)
	assert.True(t, opts.ScaleX)
	assert.False(t, opts.ScaleY)

	unchanged := DefaultOptions().WithEvalKwargs(methods.EvalKwargs{})
	assert.Equal(t, DefaultOptions().MaxSamples, unchanged.MaxSamples)
}

func TestWithEvalKwargsKeepsExplicitOptions(t *testing.T) {
	limit, off := 1000, false
	kw := methods.EvalKwargs{MaxSamples: &limit, ScaleX: &off}

	opts := DefaultOptions()
	opts.MaxSamples = 50
	opts.Explicit = []string{"n_samples"}
	got, applied := opts.applyEvalKwargs(kw)
	assert.Equal(t, 50, got.MaxSamples)
	assert.False(t, got.ScaleX)
	assert.Equal(t, map[string]interface{}{"scale_x": false}, applied)

	got, applied = DefaultOptions().applyEvalKwargs(kw)
	assert.Equal(t, 1000, got.MaxSamples)
	assert.Equal(t, map[string]interface{}{"n_samples": 1000, "scale_x": false}, applied)
}

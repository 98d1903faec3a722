package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// y = 2x + 1
func simpleData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})
	return X, y
}

func TestLinearRegression_Basic(t *testing.T) {
	X, y := simpleData()

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	if math.Abs(lr.Coef()[0]-2.0) > 1e-9 {
		t.Errorf("Expected coefficient 2.0, got %f", lr.Coef()[0])
	}
	if math.Abs(lr.Intercept()-1.0) > 1e-9 {
		t.Errorf("Expected intercept 1.0, got %f", lr.Intercept())
	}

	XTest := mat.NewDense(2, 1, []float64{5, 6})
	pred, err := lr.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	expected := []float64{11, 13}
	for i := 0; i < 2; i++ {
		if math.Abs(pred.At(i, 0)-expected[i]) > 1e-9 {
			t.Errorf("Expected prediction %f, got %f", expected[i], pred.At(i, 0))
		}
	}

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-12)
	assert.Equal(t, "1 + 2*x0", lr.Equation(nil))
}

func TestLinearRegression_NoIntercept(t *testing.T) {
	// y = 2x
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	lr := NewLinearRegression(WithFitIntercept(false))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	if math.Abs(lr.Coef()[0]-2.0) > 1e-9 {
		t.Errorf("Expected coefficient 2.0, got %f", lr.Coef()[0])
	}
	if lr.Intercept() != 0 {
		t.Errorf("Expected intercept 0, got %f", lr.Intercept())
	}
}

func TestLinearRegression_MultipleFeatures(t *testing.T) {
	// y = 2*x1 + 3*x2 + 1
	X := mat.NewDense(5, 2, []float64{
		1, 1,
		2, 1,
		3, 2,
		4, 2,
		5, 3,
	})
	y := mat.NewDense(5, 1, []float64{6, 8, 13, 15, 20})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	coef := lr.Coef()
	assert.InDelta(t, 2.0, coef[0], 1e-9)
	assert.InDelta(t, 3.0, coef[1], 1e-9)
	assert.InDelta(t, 1.0, lr.Intercept(), 1e-9)
	assert.Equal(t, 2, lr.NonZero())
}

func TestLinearRegression_RankDeficient(t *testing.T) {
	t.Run("duplicated column gets the minimum norm split", func(t *testing.T) {
		X := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
		y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.InDelta(t, 1.0, lr.Coef()[0], 1e-9)
		assert.InDelta(t, 1.0, lr.Coef()[1], 1e-9)
	})

	t.Run("constant column is absorbed by the intercept", func(t *testing.T) {
		X := mat.NewDense(4, 2, []float64{1, 1, 2, 1, 3, 1, 4, 1})
		y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.InDelta(t, 2.0, lr.Coef()[0], 1e-9)
		assert.InDelta(t, 0.0, lr.Coef()[1], 1e-9)
		assert.InDelta(t, 1.0, lr.Intercept(), 1e-9)
	})

	t.Run("all-zero design predicts the mean", func(t *testing.T) {
		X := mat.NewDense(3, 2, nil)
		y := mat.NewDense(3, 1, []float64{1, 2, 6})

		lr := NewLinearRegression()
		require.NoError(t, lr.Fit(X, y))
		assert.Equal(t, []float64{0, 0}, lr.Coef())
		assert.InDelta(t, 3.0, lr.Intercept(), 1e-12)
	})
}

func TestLinearRegression_Errors(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf), "expected NotFittedError, got %v", err)

	err = lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de), "expected DimensionError, got %v", err)

	X, y := simpleData()
	require.NoError(t, lr.Fit(X, y))
	_, err = lr.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.True(t, errors.As(err, &de), "expected DimensionError, got %v", err)
}

func TestRidge_ClosedForm(t *testing.T) {
	X, y := simpleData()

	// 1 特徴量の中心化解: w = Sxy / (Sxx + alpha) = 10 / (5 + 5)
	r := NewRidge(WithAlpha(5))
	require.NoError(t, r.Fit(X, y))
	assert.InDelta(t, 1.0, r.Coef()[0], 1e-9)
	assert.InDelta(t, 3.5, r.Intercept(), 1e-9)

	// alpha=0 は最小二乗と一致する
	r0 := NewRidge(WithAlpha(0))
	require.NoError(t, r0.Fit(X, y))
	assert.InDelta(t, 2.0, r0.Coef()[0], 1e-9)

	assert.Error(t, NewRidge(WithAlpha(-1)).Fit(X, y))
}

func TestLasso_SoftThreshold(t *testing.T) {
	X, y := simpleData()

	// w = S(Sxy, n*alpha) / Sxx = S(10, 2) / 5
	l := NewLasso(WithAlpha(0.5))
	require.NoError(t, l.Fit(X, y))
	assert.InDelta(t, 1.6, l.Coef()[0], 1e-9)
	assert.InDelta(t, 2.0, l.Intercept(), 1e-9)
	assert.LessOrEqual(t, l.NIter(), 3)

	// 十分大きな alpha では全係数が 0
	big := NewLasso(WithAlpha(100))
	require.NoError(t, big.Fit(X, y))
	assert.Equal(t, 0, big.NonZero())
	assert.InDelta(t, 6.0, big.Intercept(), 1e-12)
	assert.Equal(t, "6", big.Equation(nil))
}

func TestLasso_ConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	X, y := simpleData()
	l := NewLasso(WithAlpha(0.01), WithMaxIter(1))
	require.NoError(t, l.Fit(X, y))
	require.Len(t, warnings, 1)

	var cw *errors.ConvergenceWarning
	require.True(t, errors.As(warnings[0], &cw))
	assert.Equal(t, "Lasso", cw.Algorithm)
	assert.Equal(t, 1, cw.Iterations)
	assert.True(t, l.IsFitted())
}

func TestEquation(t *testing.T) {
	f := fitted{coef: []float64{1.5, 0, -2}, intercept: 0.5}
	assert.Equal(t, "0.5 + 1.5*x0 - 2*x2", f.Equation(nil))
	assert.Equal(t, "0.5 + 1.5*a - 2*c", f.Equation([]string{"a", "b", "c"}))
}

func TestParamsAndClone(t *testing.T) {
	estimators := []model.Estimator{
		NewLinearRegression(),
		NewRidge(),
		NewLasso(),
	}
	for _, est := range estimators {
		clone := est.Clone()
		assert.Equal(t, est.GetParams(), clone.GetParams())
		assert.Error(t, est.SetParams(map[string]interface{}{"no_such_param": 1}))
	}

	l := NewLasso()
	require.NoError(t, l.SetParams(map[string]interface{}{"alpha": 0.1, "max_iter": 2.0}))
	params := l.Clone().GetParams()
	assert.Equal(t, 0.1, params["alpha"])
	assert.Equal(t, 2, params["max_iter"])

	err := l.SetParams(map[string]interface{}{"max_iter": 2.5})
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	X, y := simpleData()
	r := NewRidge()
	require.NoError(t, r.Fit(X, y))
	assert.False(t, r.Clone().(*Ridge).IsFitted())
}

var (
	_ model.Estimator   = (*LinearRegression)(nil)
	_ model.Estimator   = (*Ridge)(nil)
	_ model.Estimator   = (*Lasso)(nil)
	_ model.LinearModel = (*Lasso)(nil)
)

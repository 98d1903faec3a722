package benchmark

import (
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/metrics"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/YuminosukeSato/regbench/preprocessing"
)

// Result is the record persisted for one (dataset, estimator, seed) run.
type Result struct {
	Dataset       string                 `json:"dataset"`
	Algorithm     string                 `json:"algorithm"`
	Params        map[string]interface{} `json:"params"`
	RandomState   int64                  `json:"random_state"`
	ProcessTime   float64                `json:"process_time"`
	TimeTime      float64                `json:"time_time"`
	ModelSize     int                    `json:"model_size"`
	SymbolicModel string                 `json:"symbolic_model"`
	MSETrain      float64                `json:"mse_train"`
	MAETrain      float64                `json:"mae_train"`
	R2Train       float64                `json:"r2_train"`
	MSETest       float64                `json:"mse_test"`
	MAETest       float64                `json:"mae_test"`
	R2Test        float64                `json:"r2_test"`

	// Paths of the written artifacts; not persisted.
	ResultPath    string `json:"-"`
	CVResultsPath string `json:"-"`
	PlotPath      string `json:"-"`
}

// Map returns the persisted fields keyed by their JSON names.
func (r *Result) Map() map[string]interface{} {
	return map[string]interface{}{
		"dataset":        r.Dataset,
		"algorithm":      r.Algorithm,
		"params":         r.Params,
		"random_state":   r.RandomState,
		"process_time":   r.ProcessTime,
		"time_time":      r.TimeTime,
		"model_size":     r.ModelSize,
		"symbolic_model": r.SymbolicModel,
		"mse_train":      r.MSETrain,
		"mae_train":      r.MAETrain,
		"r2_train":       r.R2Train,
		"mse_test":       r.MSETest,
		"mae_test":       r.MAETest,
		"r2_test":        r.R2Test,
	}
}

// FilterParams keeps only bool, integer, float and string values.
func FilterParams(params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			out[k] = v
		}
	}
	return out
}

// predictOriginal predicts on X and maps the predictions back to label
// units when yScaler is set.
func predictOriginal(est model.Estimator, X mat.Matrix, yScaler *preprocessing.StandardScaler) (mat.Matrix, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, "predict")
	}
	if yScaler == nil {
		return pred, nil
	}
	inv, err := yScaler.InverseTransform(pred)
	if err != nil {
		return nil, errors.Wrap(err, "inverse-transform predictions")
	}
	return inv, nil
}

// score fills the six metric fields. Truth is always in label units.
func (r *Result) score(est model.Estimator, yScaler *preprocessing.StandardScaler,
	XTrain mat.Matrix, yTrain *mat.VecDense, XTest mat.Matrix, yTest *mat.VecDense) error {
	train, err := predictOriginal(est, XTrain, yScaler)
	if err != nil {
		return err
	}
	test, err := predictOriginal(est, XTest, yScaler)
	if err != nil {
		return err
	}

	trainScores, err := metrics.Regression(yTrain, train)
	if err != nil {
		return errors.Wrap(err, "score train")
	}
	testScores, err := metrics.Regression(yTest, test)
	if err != nil {
		return errors.Wrap(err, "score test")
	}

	r.MSETrain, r.MAETrain, r.R2Train = trainScores.MSE, trainScores.MAE, trainScores.R2
	r.MSETest, r.MAETest, r.R2Test = testScores.MSE, testScores.MAE, testScores.R2
	return nil
}

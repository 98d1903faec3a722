package model

import (
	"math"

	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// Hyperparameter values arrive from Go literals and from YAML, so numbers may
// be any of int, int64, uint64 or float64. The helpers below coerce them and
// report a ValidationError naming the parameter otherwise.

// ParamFloat coerces a hyperparameter value to float64.
func ParamFloat(name string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	default:
		return 0, errors.NewValidationError(name, "must be a number", value)
	}
}

// ParamInt coerces a hyperparameter value to int. Floats are accepted only
// when they hold an integral value.
func ParamInt(name string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case uint:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, errors.NewValidationError(name, "must be an integer", value)
		}
		return int(v), nil
	default:
		return 0, errors.NewValidationError(name, "must be an integer", value)
	}
}

// ParamBool coerces a hyperparameter value to bool.
func ParamBool(name string, value interface{}) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, errors.NewValidationError(name, "must be a boolean", value)
	}
	return v, nil
}

// ParamString coerces a hyperparameter value to string.
func ParamString(name string, value interface{}) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", errors.NewValidationError(name, "must be a string", value)
	}
	return v, nil
}

// UnknownParam is the error returned by SetParams for an unrecognized key.
func UnknownParam(estimator, name string) error {
	return errors.NewValidationError(name, "unknown parameter for "+estimator, nil)
}

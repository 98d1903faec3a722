package benchmark

import (
	"math"
	"reflect"
)

// Jsonify returns a copy of v that encoding/json can always encode: NaN and
// ±Inf become nil, float32 widens to float64, and maps and slices are
// converted recursively. Maps must have string keys; other values pass
// through unchanged.
func Jsonify(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return jsonFloat(x)
	case float32:
		return jsonFloat(float64(x))
	case bool, string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return x
	case []float64:
		out := make([]interface{}, len(x))
		for i, f := range x {
			out[i] = jsonFloat(f)
		}
		return out
	case []int:
		out := make([]int, len(x))
		copy(out, x)
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = Jsonify(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = Jsonify(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = Jsonify(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Jsonify(iter.Value().Interface())
		}
		return out
	case reflect.Float32, reflect.Float64:
		return jsonFloat(rv.Float())
	}
	return v
}

func jsonFloat(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

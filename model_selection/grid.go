package model_selection

import (
	"sort"

	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// ParamGrid maps a hyperparameter name to its ordered candidate values.
// An empty grid is legal and yields one configuration with no overrides.
type ParamGrid map[string][]interface{}

// Keys returns the parameter names in sorted order.
func (g ParamGrid) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of configurations in the grid.
func (g ParamGrid) Len() int {
	n := 1
	for _, values := range g {
		n *= len(values)
	}
	return n
}

// Candidates expands the grid into its Cartesian product. Keys are visited
// in sorted order and the last key varies fastest.
func (g ParamGrid) Candidates() ([]map[string]interface{}, error) {
	keys := g.Keys()
	for _, k := range keys {
		if len(g[k]) == 0 {
			return nil, errors.NewValidationError(k, "parameter grid entry has no candidate values", g[k])
		}
	}

	out := make([]map[string]interface{}, 0, g.Len())
	counters := make([]int, len(keys))
	for {
		cand := make(map[string]interface{}, len(keys))
		for i, k := range keys {
			cand[k] = g[k][counters[i]]
		}
		out = append(out, cand)

		// odometer increment, last key fastest
		i := len(keys) - 1
		for ; i >= 0; i-- {
			counters[i]++
			if counters[i] < len(g[keys[i]]) {
				break
			}
			counters[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}

// Clone returns a shallow copy of the grid.
func (g ParamGrid) Clone() ParamGrid {
	out := make(ParamGrid, len(g))
	for k, v := range g {
		out[k] = append([]interface{}(nil), v...)
	}
	return out
}

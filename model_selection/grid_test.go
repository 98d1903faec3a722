package model_selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamGridCandidates(t *testing.T) {
	tests := []struct {
		name string
		grid ParamGrid
		want []map[string]interface{}
	}{
		{
			name: "empty grid yields one default configuration",
			grid: ParamGrid{},
			want: []map[string]interface{}{{}},
		},
		{
			name: "sorted keys, last varies fastest",
			grid: ParamGrid{"b": {1, 2}, "a": {"x", "y"}},
			want: []map[string]interface{}{
				{"a": "x", "b": 1},
				{"a": "x", "b": 2},
				{"a": "y", "b": 1},
				{"a": "y", "b": 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.grid.Candidates()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), tt.grid.Len())
		})
	}
}

func TestParamGridEmptyValues(t *testing.T) {
	_, err := ParamGrid{"alpha": {}}.Candidates()
	assert.Error(t, err)
}

func TestParamGridClone(t *testing.T) {
	g := ParamGrid{"alpha": {1.0, 2.0}}
	c := g.Clone()
	c["alpha"][0] = 5.0
	assert.Equal(t, 1.0, g["alpha"][0])
}

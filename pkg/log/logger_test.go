package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	regerrors "github.com/YuminosukeSato/regbench/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestZerologLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(RunIDKey, "abc")

	logger.Info("split done", SamplesKey, 150, DatasetKey, "toy")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "split done", entries[0]["message"])
	assert.Equal(t, "abc", entries[0][RunIDKey])
	assert.Equal(t, 150.0, entries[0][SamplesKey])
	assert.Equal(t, "toy", entries[0][DatasetKey])
}

func TestZerologLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelError))
}

func TestZerologLoggerErrorStack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	err := regerrors.NewValueError("Fit", "bad input")
	logger.Error("fit failed", ErrAttr(err)...)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0][ErrAttrKey], "bad input")
	assert.NotEmpty(t, entries[0][StacktraceKey])
}

func TestZerologLoggerOddFields(t *testing.T) {
	var buf bytes.Buffer
	NewZerologLogger(&buf, LevelInfo).Info("odd", "lonely")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "lonely", entries[0]["!BADKEY"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProviderNamedLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo, false)

	p.GetLoggerWithName("preprocessing").Info("scaled")
	p.SetLevel(LevelError)
	p.GetLogger().Info("dropped")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "preprocessing", entries[0][ComponentKey])
}

func TestRouteWarnings(t *testing.T) {
	provider, buf := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	RouteWarnings()
	t.Cleanup(func() {
		regerrors.SetZerologWarnFunc(nil)
		SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelInfo, false))
	})

	regerrors.Warn(regerrors.NewConvergenceWarning("Lasso", 2, ""))

	assert.Contains(t, buf.String(), "Lasso failed to converge")
	assert.Contains(t, buf.String(), "warnings")
}

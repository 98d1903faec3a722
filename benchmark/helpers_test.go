package benchmark

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// writeDataset writes a gzipped PMLB-style TSV with n rows and three
// features, y = 1.5*x0 - 2*x1 + 0.5*x2 + 3 plus a little noise.
func writeDataset(t *testing.T, name string, n int) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(11, 11))

	var sb strings.Builder
	sb.WriteString("x0\tx1\tx2\ttarget\n")
	for i := 0; i < n; i++ {
		x0, x1, x2 := rng.NormFloat64(), rng.NormFloat64()*3, rng.Float64()*10
		y := 1.5*x0 - 2*x1 + 0.5*x2 + 3 + 0.01*rng.NormFloat64()
		fmt.Fprintf(&sb, "%g\t%g\t%g\t%g\n", x0, x1, x2, y)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.ResultsDir = filepath.Join(t.TempDir(), "results")
	return opts
}

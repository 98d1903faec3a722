//go:build !unix

package benchmark

import "time"

var processStart = time.Now()

// processTime falls back to the wall time since start where getrusage is
// unavailable.
func processTime() time.Duration {
	return time.Since(processStart)
}

//go:build unix

package benchmark

import (
	"time"

	"golang.org/x/sys/unix"
)

// processTime returns the user plus system CPU time consumed by the process.
func processTime() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}

//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes for a staged copy without changing the
// file length. It reports whether the filesystem honoured the request.
//
//nolint:gosec // G115: fd values are small non-negative integers
func preallocate(f *os.File, size int64) bool {
	if size <= 0 {
		return false
	}
	return unix.Fallocate(int(f.Fd()), unix.FALLOC_FL_KEEP_SIZE, 0, size) == nil
}

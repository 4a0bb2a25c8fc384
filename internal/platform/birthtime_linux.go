//go:build linux

package platform

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// BirthTime returns the creation time of path via statx(2). The second
// result is false when the filesystem does not record it.
func BirthTime(path string, _ fs.FileInfo) (time.Time, bool) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}

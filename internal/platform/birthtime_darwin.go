//go:build darwin

package platform

import (
	"io/fs"
	"syscall"
	"time"
)

// BirthTime returns the creation time recorded in the stat buffer.
func BirthTime(_ string, info fs.FileInfo) (time.Time, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec), true
}

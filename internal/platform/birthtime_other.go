//go:build !linux && !darwin

package platform

import (
	"io/fs"
	"time"
)

// BirthTime is unavailable on this platform.
func BirthTime(_ string, _ fs.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}

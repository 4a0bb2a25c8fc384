// Package platform holds the OS-specific pieces of the sync engine: the
// fastest available way to copy file bytes and file birth times.
package platform

import "os"

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyParams describes a whole-file copy from SrcPath into the open file Dst,
// which must be empty and positioned at offset zero.
type CopyParams struct {
	Dst     *os.File
	SrcPath string
	Size    int64
}

package platform

import (
	"errors"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// CopyReadWrite copies with pread/pwrite through a pooled buffer. It works
// on every filesystem and is the last fallback of CopyFile.
func CopyReadWrite(params CopyParams) (CopyResult, error) {
	src, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	bufp := bufPool.Get().(*[]byte) //nolint:errcheck,forcetypeassert // pool only holds *[]byte
	defer bufPool.Put(bufp)
	buf := *bufp

	srcFd := int(src.Fd())
	dstFd := int(params.Dst.Fd())

	var offset int64
	for {
		n, err := unix.Pread(srcFd, buf, offset)
		if err != nil {
			return CopyResult{BytesWritten: offset, Method: ReadWrite}, err
		}
		if n == 0 {
			break
		}

		written := 0
		for written < n {
			w, err := unix.Pwrite(dstFd, buf[written:n], offset+int64(written))
			if err != nil {
				return CopyResult{BytesWritten: offset + int64(written), Method: ReadWrite}, err
			}
			written += w
		}
		offset += int64(n)
	}

	return CopyResult{BytesWritten: offset, Method: ReadWrite}, nil
}

// isFallbackErr reports whether err means the kernel cannot offload this
// copy and the next strategy should be tried.
func isFallbackErr(err error) bool {
	for _, errno := range []unix.Errno{unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP, unix.EOPNOTSUPP} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

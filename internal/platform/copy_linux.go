//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile tries the most efficient copy method available on Linux,
// falling through on unsupported/cross-device errors. A partially
// offloaded copy is never resumed by a later strategy; the caller
// discards the staged file on error.
func CopyFile(params CopyParams) (CopyResult, error) {
	preallocate(params.Dst, params.Size)

	result, err := copyFileRange(params)
	if err == nil {
		return result, nil
	}
	if result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}

	result, err = copySendfile(params)
	if err == nil {
		return result, nil
	}
	if result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}

	return CopyReadWrite(params)
}

func copyFileRange(params CopyParams) (CopyResult, error) {
	src, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	var roff, woff int64
	var total int64
	for {
		// The size recorded at walk time is only a hint; copy until EOF.
		chunk := params.Size - total
		if chunk < bufferSize {
			chunk = bufferSize
		}
		n, err := unix.CopyFileRange(int(src.Fd()), &roff, int(params.Dst.Fd()), &woff, int(chunk), 0)
		if err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		total += int64(n)
	}

	return CopyResult{BytesWritten: total, Method: CopyFileRange}, nil
}

func copySendfile(params CopyParams) (CopyResult, error) {
	src, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	var offset int64
	for {
		n, err := unix.Sendfile(int(params.Dst.Fd()), int(src.Fd()), &offset, bufferSize)
		if err != nil {
			return CopyResult{BytesWritten: offset, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
	}

	return CopyResult{BytesWritten: offset, Method: Sendfile}, nil
}

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/bamsammich/noteworm/internal/platform"
)

// copier writes source files into the destination tree through a staging
// file and an atomic rename, so a destination path always holds either its
// previous content or the complete new content.
type copier struct {
	limiter *rate.Limiter
}

// copyFile replaces dstPath with the content of src and returns the number
// of bytes written.
func (c *copier) copyFile(ctx context.Context, src FileEntry, dstPath string) (int64, error) {
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, ioErr("mkdir", dir, err)
	}

	tmpPath := tmpName(dstPath)
	RegisterTmp(tmpPath)
	defer func() {
		DeregisterTmp(tmpPath)
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, ioErr("copy", tmpPath, err)
	}

	n, err := c.copyData(ctx, src, tmp)
	if err != nil {
		tmp.Close()
		return n, ioErr("copy", src.AbsPath, err)
	}

	// Open with 0600 and chmod afterwards so the umask does not narrow
	// the source permissions.
	if err := tmp.Chmod(src.Mode.Perm()); err != nil {
		tmp.Close()
		return n, ioErr("copy", tmpPath, fmt.Errorf("chmod: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return n, ioErr("copy", tmpPath, fmt.Errorf("sync: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return n, ioErr("copy", tmpPath, fmt.Errorf("close: %w", err))
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		return n, ioErr("rename", dstPath, err)
	}
	return n, nil
}

func (c *copier) copyData(ctx context.Context, src FileEntry, dst *os.File) (int64, error) {
	if c.limiter == nil {
		res, err := platform.CopyFile(platform.CopyParams{
			Dst:     dst,
			SrcPath: src.AbsPath,
			Size:    src.Size,
		})
		return res.BytesWritten, err
	}

	f, err := os.Open(src.AbsPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 256*1024)
	return io.CopyBuffer(dst, newRateLimitedReader(ctx, f, c.limiter), buf)
}

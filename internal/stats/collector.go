package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks sync statistics using lock-free atomic counters.
type Collector struct {
	startTime         time.Time
	filesScanned      atomic.Int64
	filesCopied       atomic.Int64
	filesSkipped      atomic.Int64
	filesDeleted      atomic.Int64
	filesFailed       atomic.Int64
	bytesCopied       atomic.Int64
	bytesTotal        atomic.Int64
	filesTotal        atomic.Int64
	filesVerified     atomic.Int64
	filesVerifyFailed atomic.Int64
}

// Writer is the write side of a collector, used by the engine.
type Writer interface {
	AddFilesScanned(n int64)
	AddFilesCopied(n int64)
	AddFilesSkipped(n int64)
	AddFilesDeleted(n int64)
	AddFilesFailed(n int64)
	AddBytesCopied(n int64)
	AddFilesVerified(n int64)
	AddFilesVerifyFailed(n int64)
	SetTotals(files, bytes int64)
}

// Reader is the read side of a collector, used by presenters.
type Reader interface {
	Snapshot() Snapshot
}

var (
	_ Writer = (*Collector)(nil)
	_ Reader = (*Collector)(nil)
)

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records walk totals (called once when the source walk completes).
func (c *Collector) SetTotals(files, bytes int64) {
	c.filesTotal.Store(files)
	c.bytesTotal.Store(bytes)
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesScanned      int64
	FilesCopied       int64
	FilesSkipped      int64
	FilesDeleted      int64
	FilesFailed       int64
	BytesCopied       int64
	BytesTotal        int64
	FilesTotal        int64
	FilesVerified     int64
	FilesVerifyFailed int64
	Elapsed           time.Duration
}

func (c *Collector) AddFilesScanned(n int64)      { c.filesScanned.Add(n) }
func (c *Collector) AddFilesCopied(n int64)       { c.filesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)      { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesDeleted(n int64)      { c.filesDeleted.Add(n) }
func (c *Collector) AddFilesFailed(n int64)       { c.filesFailed.Add(n) }
func (c *Collector) AddBytesCopied(n int64)       { c.bytesCopied.Add(n) }
func (c *Collector) AddFilesVerified(n int64)     { c.filesVerified.Add(n) }
func (c *Collector) AddFilesVerifyFailed(n int64) { c.filesVerifyFailed.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesScanned:      c.filesScanned.Load(),
		FilesCopied:       c.filesCopied.Load(),
		FilesSkipped:      c.filesSkipped.Load(),
		FilesDeleted:      c.filesDeleted.Load(),
		FilesFailed:       c.filesFailed.Load(),
		BytesCopied:       c.bytesCopied.Load(),
		BytesTotal:        c.bytesTotal.Load(),
		FilesTotal:        c.filesTotal.Load(),
		FilesVerified:     c.filesVerified.Load(),
		FilesVerifyFailed: c.filesVerifyFailed.Load(),
		Elapsed:           c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"scanned=%d copied=%d skipped=%d deleted=%d failed=%d bytes=%d",
		s.FilesScanned, s.FilesCopied, s.FilesSkipped, s.FilesDeleted,
		s.FilesFailed, s.BytesCopied,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

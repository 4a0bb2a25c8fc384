package ui

import (
	"fmt"

	"github.com/bamsammich/noteworm/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  copied 12  skipped 480  deleted 2  size 3.1 MiB  avg 12.0 MB/s  time 1s  errors 0
func CompletionSummary(snap stats.Snapshot, dryRun bool) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.FilesFailed > 0 || snap.FilesVerifyFailed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  copied %s  skipped %s  deleted %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.FilesCopied),
		FormatCount(snap.FilesSkipped),
		FormatCount(snap.FilesDeleted),
		FormatBytes(snap.BytesCopied),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)

	if snap.FilesVerified > 0 || snap.FilesVerifyFailed > 0 {
		base += fmt.Sprintf("  verified %s", FormatCount(snap.FilesVerified))
	}

	base += fmt.Sprintf("  errors %d", snap.FilesFailed+snap.FilesVerifyFailed)

	if dryRun {
		return "dry run: " + base
	}
	return base
}

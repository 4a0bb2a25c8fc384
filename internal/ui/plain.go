package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/noteworm/internal/engine"
	"github.com/bamsammich/noteworm/internal/stats"
)

// plainPresenter prints one line per decision to stdout and, when stdout is
// not a terminal, periodic progress to stderr.
type plainPresenter struct {
	w        io.Writer
	errW     io.Writer
	stats    stats.Reader
	theme    Theme
	color    bool
	progress bool
	verbose  bool
	dryRun   bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			if p.progress {
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case FileCopied:
		fmt.Fprintf(p.w, "%s  %s  %s\n", paint(p.theme.Copy, p.color, "copy  "), ev.Path, FormatBytes(ev.Size))
	case FileSkipped:
		if p.verbose || ev.Reason != engine.ReasonIdentical {
			fmt.Fprintf(p.w, "%s  %s  %s\n", paint(p.theme.Skip, p.color, "skip  "), ev.Path,
				paint(p.theme.Muted, p.color, ev.Reason))
		}
	case FileDeleted:
		fmt.Fprintf(p.w, "%s  %s\n", paint(p.theme.Delete, p.color, "delete"), ev.Path)
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s  %s\n", paint(p.theme.Fail, p.color, "fail  "), ev.Path, errMsg)
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyFailed:
		fmt.Fprintf(p.w, "%s  %s\n", paint(p.theme.Fail, p.color, "MISMATCH"), ev.Path)
	case WalkStarted, WalkComplete, PruneStarted, VerifyOK:
		// counters only
	}
}

func (p *plainPresenter) printProgress() {
	if p.stats == nil {
		return
	}
	snap := p.stats.Snapshot()
	done := snap.FilesCopied + snap.FilesSkipped + snap.FilesFailed
	fmt.Fprintf(p.errW, "progress: %s/%s files %s copied\n",
		FormatCount(done), FormatCount(snap.FilesTotal), FormatBytes(snap.BytesCopied))
}

func (p *plainPresenter) Summary() string {
	if p.stats == nil {
		return ""
	}
	return CompletionSummary(p.stats.Snapshot(), p.dryRun)
}

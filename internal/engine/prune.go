package engine

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/bamsammich/noteworm/internal/classify"
	"github.com/bamsammich/noteworm/internal/event"
	"github.com/bamsammich/noteworm/internal/filter"
	"github.com/bamsammich/noteworm/internal/stats"
)

// PruneConfig controls the prune pass.
type PruneConfig struct {
	Events     chan<- event.Event
	Stats      stats.Writer
	Rules      *filter.Rules
	Classifier *classify.Classifier
	Report     *Report
	DstRoot    string
	Workers    int
	DryRun     bool
}

// excludeSkip adapts exclude rules to a walk skip function. Directories are
// tested with a trailing slash so directory-only patterns apply to them.
func excludeSkip(rules *filter.Rules) func(string, bool) bool {
	return func(rel string, isDir bool) bool {
		if isDir {
			return rules.Excluded(rel + "/")
		}
		return rules.Excluded(rel)
	}
}

// Prune removes destination files whose paths the report does not hold as
// kept. Protected and excluded paths are never touched, and neither is any
// directory: only files are removed. In dry-run mode the deletions are
// reported but not performed. It returns the number of files deleted.
func Prune(ctx context.Context, cfg PruneConfig) (int, error) {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Report == nil {
		cfg.Report = newReport(cfg.DryRun)
	}
	emitEvent(cfg.Events, event.Event{Type: event.PruneStarted, DryRun: cfg.DryRun})

	if _, err := os.Stat(cfg.DstRoot); errors.Is(err, fs.ErrNotExist) && cfg.DryRun {
		return 0, nil
	}

	excluded := excludeSkip(cfg.Rules)
	entries, err := Walk(ctx, cfg.DstRoot, WalkOptions{
		Workers:    cfg.Workers,
		Classifier: cfg.Classifier,
		Skip: func(rel string, isDir bool) bool {
			return cfg.Rules.Protected(rel) || excluded(rel, isDir)
		},
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return deleted, ioErr("delete", cfg.DstRoot, err)
		}
		if cfg.Report.isKept(e.RelPath) {
			continue
		}

		reason := ReasonExtraneous
		if isTmpName(path.Base(e.RelPath)) {
			reason = ReasonStaging
		}

		if !cfg.DryRun {
			if err := os.Remove(e.AbsPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				err = ioErr("delete", e.AbsPath, err)
				cfg.Report.add(Action{Path: e.RelPath, Op: OpFail, Reason: reason, Err: err})
				cfg.Stats.AddFilesFailed(1)
				sendEvent(ctx, cfg.Events, event.Event{Type: event.FileFailed, Path: e.RelPath, Error: err})
				return deleted, err
			}
		}

		slog.Debug("pruned", "path", e.RelPath, "reason", reason, "dry_run", cfg.DryRun)
		cfg.Report.add(Action{Path: e.RelPath, Op: OpDelete, Reason: reason, Size: e.Size})
		cfg.Stats.AddFilesDeleted(1)
		sendEvent(ctx, cfg.Events, event.Event{
			Type:   event.FileDeleted,
			Path:   e.RelPath,
			Reason: reason,
			Size:   e.Size,
			DryRun: cfg.DryRun,
		})
		deleted++
	}
	return deleted, nil
}

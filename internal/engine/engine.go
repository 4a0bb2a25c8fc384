// Package engine mirrors a notes vault into a backup directory. A run walks
// the source, copies every file whose destination is missing or different,
// then prunes destination files that no longer exist in the source.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bamsammich/noteworm/internal/classify"
	"github.com/bamsammich/noteworm/internal/event"
	"github.com/bamsammich/noteworm/internal/filter"
	"github.com/bamsammich/noteworm/internal/stats"
)

// Config describes a backup run.
type Config struct {
	Events     chan<- event.Event
	Stats      *stats.Collector
	Rules      *filter.Rules // nil means filter.DefaultRules
	Classifier *classify.Classifier
	Comparator Comparator // overrides Compare when set

	Src     string
	Dst     string
	Compare Strategy

	Workers     int
	WalkWorkers int
	BWLimit     int64 // bytes per second; zero is unlimited

	DryRun    bool
	Lenient   bool // skip files that cannot be compared instead of failing
	KeepGoing bool // record per-file failures and continue
	Verify    bool
}

// Result is the outcome of a run.
type Result struct {
	Report *Report
	Stats  stats.Snapshot
	Err    error
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = min(runtime.NumCPU()*2, 32)
	}
	if c.WalkWorkers <= 0 {
		c.WalkWorkers = min(runtime.NumCPU(), 8)
	}
	if c.Rules == nil {
		c.Rules = filter.DefaultRules()
	}
	if c.Stats == nil {
		c.Stats = stats.NewCollector()
	}
	if c.Comparator == nil {
		c.Comparator = c.Compare.Comparator()
	}
	return c
}

type run struct {
	cfg    Config
	report *Report
	copier *copier
}

// Run executes a backup, blocking until complete. Result.Report is always
// set, even when Result.Err is not nil.
func Run(ctx context.Context, cfg Config) Result {
	cfg = cfg.withDefaults()
	r := &run{cfg: cfg, report: newReport(cfg.DryRun), copier: &copier{}}
	if cfg.BWLimit > 0 {
		r.copier.limiter = NewBWLimiter(cfg.BWLimit)
	}

	err := r.execute(ctx)
	return Result{Report: r.report, Stats: cfg.Stats.Snapshot(), Err: err}
}

func (r *run) execute(ctx context.Context) error {
	cfg := r.cfg

	srcInfo, err := os.Stat(cfg.Src)
	if err != nil {
		return ioErr("walk", cfg.Src, err)
	}
	if !srcInfo.IsDir() {
		return &IOError{Op: "walk", Path: cfg.Src, Err: ErrNotDir}
	}
	if err := checkOverlap(cfg.Src, cfg.Dst); err != nil {
		return err
	}

	dstMissing, err := prepareDestination(cfg.Dst, cfg.DryRun)
	if err != nil {
		return err
	}

	emitEvent(cfg.Events, event.Event{Type: event.WalkStarted, DryRun: cfg.DryRun})
	_, digest := cfg.Comparator.(DigestComparator)
	entries, err := Walk(ctx, cfg.Src, WalkOptions{
		Workers:    cfg.WalkWorkers,
		Classifier: cfg.Classifier,
		Digest:     digest,
		Skip:       excludeSkip(cfg.Rules),
	})
	if err != nil {
		return err
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	cfg.Stats.SetTotals(int64(len(entries)), total)
	emitEvent(cfg.Events, event.Event{
		Type:      event.WalkComplete,
		Total:     int64(len(entries)),
		TotalSize: total,
		DryRun:    cfg.DryRun,
	})
	slog.Debug("source walk complete", "files", len(entries), "bytes", total)

	syncErr := r.syncAll(ctx, entries, dstMissing)
	if syncErr != nil && !cfg.KeepGoing {
		return syncErr
	}
	// Pruning after an interrupted sync could delete files that were
	// never compared.
	if err := ctx.Err(); err != nil {
		return errors.Join(syncErr, ioErr("walk", cfg.Src, err))
	}

	if _, err := Prune(ctx, PruneConfig{
		Events:     cfg.Events,
		Stats:      cfg.Stats,
		Rules:      cfg.Rules,
		Classifier: cfg.Classifier,
		Report:     r.report,
		DstRoot:    cfg.Dst,
		Workers:    cfg.WalkWorkers,
		DryRun:     cfg.DryRun,
	}); err != nil {
		return errors.Join(syncErr, err)
	}

	if cfg.Verify && !cfg.DryRun {
		paths := r.report.verifiable()
		vr := Verify(ctx, VerifyConfig{
			Events:  cfg.Events,
			Stats:   cfg.Stats,
			SrcRoot: cfg.Src,
			DstRoot: cfg.Dst,
			Paths:   paths,
			Workers: cfg.Workers,
		})
		if vr.Failed > 0 {
			syncErr = errors.Join(syncErr, fmt.Errorf("verify: %d of %d files differ", vr.Failed, len(paths)))
		}
	}

	return syncErr
}

// checkOverlap rejects a destination inside the source or the reverse.
// Either would make the walk see its own output or the prune delete the
// source.
func checkOverlap(src, dst string) error {
	a, err := resolveRoot(src)
	if err != nil {
		return ioErr("walk", src, err)
	}
	b, err := resolveRoot(dst)
	if err != nil {
		return ioErr("walk", dst, err)
	}
	if within(a, b) || within(b, a) {
		return &IOError{Op: "walk", Path: dst, Err: ErrOverlap}
	}
	return nil
}

// resolveRoot returns the absolute path of p with symlinks resolved in its
// longest existing prefix. A root that does not exist yet resolves through
// its nearest existing ancestor.
func resolveRoot(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	dir, rest := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// prepareDestination makes sure the destination root exists. In dry-run
// mode a missing root is reported instead of created.
func prepareDestination(dst string, dryRun bool) (missing bool, err error) {
	info, err := os.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if dryRun {
			return true, nil
		}
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return false, ioErr("mkdir", dst, err)
		}
		return false, nil
	case err != nil:
		return false, ioErr("stat", dst, err)
	case !info.IsDir():
		return false, &IOError{Op: "stat", Path: dst, Err: ErrNotDir}
	}
	return false, nil
}

// syncAll fans the source entries out to cfg.Workers goroutines. Without
// KeepGoing the first failure cancels the remaining work.
func (r *run) syncAll(ctx context.Context, entries []FileEntry, dstMissing bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskCh := make(chan FileEntry, r.cfg.Workers*2)
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	for range r.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range taskCh {
				if ctx.Err() != nil {
					continue
				}
				if err := r.syncFile(ctx, e, dstMissing); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					if !r.cfg.KeepGoing {
						cancel()
					}
				}
			}
		}()
	}

feed:
	for _, e := range entries {
		select {
		case <-ctx.Done():
			break feed
		case taskCh <- e:
		}
	}
	close(taskCh)
	wg.Wait()

	if len(errs) == 0 {
		return nil
	}
	if !r.cfg.KeepGoing {
		return errs[0]
	}
	return errors.Join(errs...)
}

// syncFile brings one destination file in line with its source.
func (r *run) syncFile(ctx context.Context, src FileEntry, dstMissing bool) error {
	cfg := r.cfg
	cfg.Stats.AddFilesScanned(1)
	r.report.keep(src.RelPath)

	local := filepath.FromSlash(src.RelPath)
	if !filepath.IsLocal(local) {
		return r.failed(ctx, src, &IOError{Op: "copy", Path: src.RelPath, Err: ErrNotLocal})
	}
	dstPath := filepath.Join(cfg.Dst, local)

	op, reason, err := r.decide(ctx, src, dstPath, dstMissing)
	if err != nil {
		return r.failed(ctx, src, err)
	}

	if op == OpSkip {
		r.report.add(Action{Path: src.RelPath, Op: OpSkip, Reason: reason, Size: src.Size})
		cfg.Stats.AddFilesSkipped(1)
		sendEvent(ctx, cfg.Events, event.Event{
			Type:   event.FileSkipped,
			Path:   src.RelPath,
			Reason: reason,
			Size:   src.Size,
			DryRun: cfg.DryRun,
		})
		return nil
	}

	size := src.Size
	if !cfg.DryRun {
		n, err := r.copier.copyFile(ctx, src, dstPath)
		if err != nil {
			return r.failed(ctx, src, err)
		}
		size = n
		cfg.Stats.AddBytesCopied(n)
	}

	slog.Debug("copied", "path", src.RelPath, "reason", reason, "bytes", size, "dry_run", cfg.DryRun)
	r.report.add(Action{Path: src.RelPath, Op: OpCopy, Reason: reason, Size: size})
	cfg.Stats.AddFilesCopied(1)
	sendEvent(ctx, cfg.Events, event.Event{
		Type:   event.FileCopied,
		Path:   src.RelPath,
		Reason: reason,
		Size:   size,
		DryRun: cfg.DryRun,
	})
	return nil
}

// decide picks copy or skip for one source file.
func (r *run) decide(ctx context.Context, src FileEntry, dstPath string, dstMissing bool) (Op, string, error) {
	if dstMissing {
		return OpCopy, ReasonMissing, nil
	}

	info, err := os.Lstat(dstPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return OpCopy, ReasonMissing, nil
	case err != nil:
		return 0, "", ioErr("stat", dstPath, err)
	case info.IsDir():
		return 0, "", &IOError{Op: "stat", Path: dstPath, Err: ErrIsDir}
	case !info.Mode().IsRegular():
		return OpCopy, ReasonNotRegular, nil
	}

	dst := FileEntry{
		AbsPath:  dstPath,
		RelPath:  src.RelPath,
		Size:     info.Size(),
		Mode:     info.Mode(),
		Modified: info.ModTime().Local(),
	}

	cmp := r.cfg.Comparator.Compare(ctx, src, dst)
	switch cmp.Verdict {
	case Identical:
		return OpSkip, ReasonIdentical, nil
	case Differs:
		return OpCopy, ReasonChanged, nil
	default:
		if cmp.Err == nil {
			cmp.Err = errors.New("comparison indeterminate")
		}
		if r.cfg.Lenient {
			slog.Warn("could not compare, leaving destination as is", "path", src.RelPath, "error", cmp.Err)
			return OpSkip, ReasonIndeterminate, nil
		}
		return 0, "", ioErr("compare", dstPath, cmp.Err)
	}
}

func (r *run) failed(ctx context.Context, src FileEntry, err error) error {
	slog.Debug("file failed", "path", src.RelPath, "error", err)
	r.report.add(Action{Path: src.RelPath, Op: OpFail, Size: src.Size, Err: err})
	r.cfg.Stats.AddFilesFailed(1)
	sendEvent(ctx, r.cfg.Events, event.Event{Type: event.FileFailed, Path: src.RelPath, Error: err})
	return err
}

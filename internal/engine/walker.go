package engine

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/bamsammich/noteworm/internal/classify"
)

// DefaultMaxDepth bounds directory nesting during a walk.
const DefaultMaxDepth = 4096

// WalkOptions controls Walk.
type WalkOptions struct {
	Classifier *classify.Classifier

	// Skip is consulted for every entry below the root. Returning true
	// drops a file, or a directory together with everything beneath it.
	Skip func(relPath string, isDir bool) bool

	Workers  int
	MaxDepth int

	// Digest computes the BLAKE3 digest of every file during the walk.
	Digest bool
}

func (o WalkOptions) withDefaults() WalkOptions {
	if o.Workers <= 0 {
		o.Workers = min(runtime.NumCPU(), 8)
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

type dirItem struct {
	abs   string
	rel   string
	depth int
}

// worklist is a shared directory stack. pending counts directories that are
// queued or being read, so workers can tell an empty stack from a finished
// walk.
type worklist struct {
	cond    *sync.Cond
	dirs    []dirItem
	pending int
	closed  bool
	mu      sync.Mutex
}

func newWorklist() *worklist {
	wl := &worklist{}
	wl.cond = sync.NewCond(&wl.mu)
	return wl
}

func (wl *worklist) push(items ...dirItem) {
	if len(items) == 0 {
		return
	}
	wl.mu.Lock()
	wl.dirs = append(wl.dirs, items...)
	wl.pending += len(items)
	wl.mu.Unlock()
	wl.cond.Broadcast()
}

func (wl *worklist) pop() (dirItem, bool) {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	for len(wl.dirs) == 0 && wl.pending > 0 && !wl.closed {
		wl.cond.Wait()
	}
	if wl.closed || len(wl.dirs) == 0 {
		return dirItem{}, false
	}
	item := wl.dirs[len(wl.dirs)-1]
	wl.dirs = wl.dirs[:len(wl.dirs)-1]
	return item, true
}

func (wl *worklist) done() {
	wl.mu.Lock()
	wl.pending--
	last := wl.pending == 0
	wl.mu.Unlock()
	if last {
		wl.cond.Broadcast()
	}
}

func (wl *worklist) abort() {
	wl.mu.Lock()
	wl.closed = true
	wl.mu.Unlock()
	wl.cond.Broadcast()
}

// Walk lists every regular file beneath root. Symlinks and special files are
// skipped. Directories are read in parallel from an explicit worklist, so
// recursion depth never grows with the tree. The first failure stops all
// workers and is returned as an *IOError; no partial listing is returned.
// Entries come back sorted by RelPath.
func Walk(ctx context.Context, root string, opts WalkOptions) ([]FileEntry, error) {
	opts = opts.withDefaults()

	info, err := os.Stat(root)
	if err != nil {
		return nil, ioErr("walk", root, err)
	}
	if !info.IsDir() {
		return nil, &IOError{Op: "walk", Path: root, Err: ErrNotDir}
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wl := newWorklist()
	stop := context.AfterFunc(ctx, wl.abort)
	defer stop()

	var (
		mu       sync.Mutex
		entries  []FileEntry
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	wl.push(dirItem{abs: root})

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local []FileEntry
			for {
				item, ok := wl.pop()
				if !ok {
					break
				}
				found, err := readDir(ctx, item, wl, opts)
				wl.done()
				if err != nil {
					fail(err)
					break
				}
				local = append(local, found...)
			}
			mu.Lock()
			entries = append(entries, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, ioErr("walk", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
	return entries, nil
}

// readDir lists one directory, queues its subdirectories and returns the
// regular files it holds.
func readDir(ctx context.Context, item dirItem, wl *worklist, opts WalkOptions) ([]FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, ioErr("walk", item.abs, err)
	}

	dirents, err := os.ReadDir(item.abs)
	if err != nil {
		return nil, ioErr("readdir", item.abs, err)
	}

	var (
		files   []FileEntry
		subdirs []dirItem
	)
	for _, d := range dirents {
		abs := filepath.Join(item.abs, d.Name())
		rel := path.Join(item.rel, d.Name())
		typ := d.Type()

		switch {
		case typ.IsDir():
			if opts.Skip != nil && opts.Skip(rel, true) {
				continue
			}
			if item.depth+1 > opts.MaxDepth {
				return nil, &IOError{Op: "walk", Path: abs, Err: ErrTooDeep}
			}
			subdirs = append(subdirs, dirItem{abs: abs, rel: rel, depth: item.depth + 1})

		case typ.IsRegular():
			if opts.Skip != nil && opts.Skip(rel, false) {
				continue
			}
			info, err := d.Info()
			if err != nil {
				return nil, ioErr("stat", abs, err)
			}
			entry := newEntry(abs, rel, info, opts.Classifier)
			if opts.Digest {
				digest, err := HashFile(abs)
				if err != nil {
					return nil, err
				}
				entry.Digest = digest
			}
			files = append(files, entry)

		default:
			slog.Debug("skipping non-regular entry", "path", rel, "type", typ.String())
		}
	}

	wl.push(subdirs...)
	return files, nil
}

package engine

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/bamsammich/noteworm/internal/event"
	"github.com/bamsammich/noteworm/internal/stats"
)

// VerifyConfig controls the post-run verification pass.
type VerifyConfig struct {
	Events  chan<- event.Event
	Stats   stats.Writer
	SrcRoot string
	DstRoot string
	Paths   []string // slash-separated relative paths to check
	Workers int
}

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Errors   []VerifyError
	Verified int64
	Failed   int64
}

// VerifyError records a single checksum mismatch or unreadable file.
type VerifyError struct {
	Err     error
	Path    string
	SrcHash string
	DstHash string
}

// Verify compares BLAKE3 digests of every path in cfg.Paths between the two
// roots. It fans out to cfg.Workers goroutines.
func Verify(ctx context.Context, cfg VerifyConfig) VerifyResult {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	sendEvent(ctx, cfg.Events, event.Event{Type: event.VerifyStarted, Total: int64(len(cfg.Paths))})

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	taskCh := make(chan string, workers*2)
	var mu sync.Mutex
	var result VerifyResult
	var wg sync.WaitGroup

	fail := func(ve VerifyError) {
		mu.Lock()
		result.Failed++
		result.Errors = append(result.Errors, ve)
		mu.Unlock()
		cfg.Stats.AddFilesVerifyFailed(1)
		sendEvent(ctx, cfg.Events, event.Event{Type: event.VerifyFailed, Path: ve.Path, Error: ve.Err})
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for relPath := range taskCh {
				if ctx.Err() != nil {
					continue
				}

				srcHash, err := HashFile(filepath.Join(cfg.SrcRoot, filepath.FromSlash(relPath)))
				if err != nil {
					fail(VerifyError{Path: relPath, SrcHash: "error", DstHash: "n/a", Err: err})
					continue
				}
				dstHash, err := HashFile(filepath.Join(cfg.DstRoot, filepath.FromSlash(relPath)))
				if err != nil {
					fail(VerifyError{Path: relPath, SrcHash: srcHash, DstHash: "error", Err: err})
					continue
				}
				if srcHash != dstHash {
					fail(VerifyError{Path: relPath, SrcHash: srcHash, DstHash: dstHash})
					continue
				}

				mu.Lock()
				result.Verified++
				mu.Unlock()
				cfg.Stats.AddFilesVerified(1)
				emitEvent(cfg.Events, event.Event{Type: event.VerifyOK, Path: relPath})
			}
		}()
	}

feed:
	for _, p := range cfg.Paths {
		select {
		case <-ctx.Done():
			break feed
		case taskCh <- p:
		}
	}
	close(taskCh)
	wg.Wait()

	return result
}

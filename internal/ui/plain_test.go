package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/noteworm/internal/stats"
)

func newTestPlain(verbose bool) (*plainPresenter, *bytes.Buffer, *stats.Collector) {
	var out, errOut bytes.Buffer
	collector := stats.NewCollector()
	p := NewPresenter(Config{
		Writer:    &out,
		ErrWriter: &errOut,
		Stats:     collector,
		Verbose:   verbose,
	}).(*plainPresenter)
	return p, &out, collector
}

func runEvents(t *testing.T, p Presenter, evs ...Event) {
	t.Helper()
	events := make(chan Event, len(evs))
	for _, ev := range evs {
		events <- ev
	}
	close(events)
	require.NoError(t, p.Run(events))
}

func TestPlainPresenterDecisionTrail(t *testing.T) {
	p, out, _ := newTestPlain(false)

	runEvents(t, p,
		Event{Type: WalkStarted},
		Event{Type: FileCopied, Path: "notes/a.md", Size: 10, Reason: "missing"},
		Event{Type: FileSkipped, Path: "notes/same.md", Reason: "identical"},
		Event{Type: FileSkipped, Path: "notes/odd.md", Reason: "indeterminate"},
		Event{Type: FileDeleted, Path: "notes/stale.md"},
		Event{Type: FileFailed, Path: "notes/bad.md", Error: assert.AnError},
	)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "copy    notes/a.md  10 B", lines[0])
	assert.Equal(t, "skip    notes/odd.md  indeterminate", lines[1])
	assert.Equal(t, "delete  notes/stale.md", lines[2])
	assert.Equal(t, "fail    notes/bad.md  "+assert.AnError.Error(), lines[3])
}

func TestPlainPresenterVerboseShowsIdentical(t *testing.T) {
	p, out, _ := newTestPlain(true)

	runEvents(t, p, Event{Type: FileSkipped, Path: "same.md", Reason: "identical"})
	assert.Equal(t, "skip    same.md  identical\n", out.String())
}

func TestPlainPresenterVerify(t *testing.T) {
	p, out, _ := newTestPlain(false)

	runEvents(t, p,
		Event{Type: VerifyStarted},
		Event{Type: VerifyOK, Path: "good.md"},
		Event{Type: VerifyFailed, Path: "bad/file.md"},
	)
	assert.Equal(t, "verifying...\nMISMATCH  bad/file.md\n", out.String())
}

func TestPlainPresenterProgress(t *testing.T) {
	var errOut bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotals(10, 100)
	collector.AddFilesCopied(3)
	collector.AddFilesSkipped(2)
	collector.AddBytesCopied(2048)

	p := &plainPresenter{errW: &errOut, stats: collector}
	p.printProgress()
	assert.Equal(t, "progress: 5/10 files 2.0 KiB copied\n", errOut.String())
}

func TestPlainPresenterSummary(t *testing.T) {
	p, _, collector := newTestPlain(false)
	collector.AddFilesCopied(100)
	collector.AddBytesCopied(1024 * 1024)

	s := p.Summary()
	assert.Contains(t, s, "copied 100")
	assert.Contains(t, s, "size 1.0 MiB")
	assert.Contains(t, s, "errors 0")
	assert.NotContains(t, s, "dry run")
}

func TestCompletionSummary(t *testing.T) {
	snap := stats.Snapshot{
		FilesCopied:   2,
		FilesSkipped:  1500,
		FilesDeleted:  1,
		FilesFailed:   1,
		FilesVerified: 2,
		BytesCopied:   2048,
		Elapsed:       2 * time.Second,
	}

	s := CompletionSummary(snap, true)
	assert.True(t, strings.HasPrefix(s, "dry run: done ✗"))
	assert.Contains(t, s, "skipped 1,500")
	assert.Contains(t, s, "deleted 1")
	assert.Contains(t, s, "avg 1.00 KB/s")
	assert.Contains(t, s, "verified 2")
	assert.Contains(t, s, "errors 1")
}

func TestQuietPresenter(t *testing.T) {
	collector := stats.NewCollector()
	p := NewPresenter(Config{Quiet: true, Stats: collector})
	assert.IsType(t, &quietPresenter{}, p)

	events := make(chan Event)
	go func() {
		for range 1000 {
			events <- Event{Type: FileCopied, Path: "a.md"}
		}
		close(events)
	}()
	require.NoError(t, p.Run(events))
	assert.Empty(t, p.Summary())
}

func TestThemeOverrides(t *testing.T) {
	name := "hicyan"
	theme, err := DefaultTheme().WithOverrides(&name, nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, theme.Copy)

	bad := "mauve"
	_, err = DefaultTheme().WithOverrides(nil, &bad, nil, nil)
	assert.Error(t, err)

	assert.Equal(t, "plain", paint(theme.Copy, false, "plain"))
}

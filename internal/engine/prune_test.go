package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/noteworm/internal/event"
	"github.com/bamsammich/noteworm/internal/filter"
	"github.com/bamsammich/noteworm/internal/stats"
)

func keptReport(paths ...string) *Report {
	r := newReport(false)
	for _, p := range paths {
		r.keep(p)
	}
	return r
}

func TestPruneRemovesUnkeptFiles(t *testing.T) {
	dst := t.TempDir()
	writeTree(t, dst, map[string]string{
		"keep.md":         "k",
		"gone.md":         "g",
		"old/nested.md":   "n",
		".git/HEAD":       "ref: refs/heads/main",
		".git/objects/ab": "blob",
	})

	collector := stats.NewCollector()
	report := keptReport("keep.md")
	deleted, err := Prune(context.Background(), PruneConfig{
		DstRoot: dst,
		Rules:   filter.DefaultRules(),
		Report:  report,
		Stats:   collector,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{"gone.md", "old/nested.md"}, report.Deleted())
	assert.Equal(t, int64(2), collector.Snapshot().FilesDeleted)

	assert.Equal(t, map[string]string{
		"keep.md":         "k",
		".git/HEAD":       "ref: refs/heads/main",
		".git/objects/ab": "blob",
	}, readTree(t, dst))

	// Emptied directories stay.
	info, err := os.Stat(filepath.Join(dst, "old"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPruneHonoursExcludes(t *testing.T) {
	dst := t.TempDir()
	writeTree(t, dst, map[string]string{
		"local.tmp":       "t",
		"cache/entry.bin": "c",
		"gone.md":         "g",
	})

	rules := filter.DefaultRules()
	require.NoError(t, rules.AddExclude("*.tmp"))
	require.NoError(t, rules.AddExclude("cache/"))

	report := keptReport()
	_, err := Prune(context.Background(), PruneConfig{DstRoot: dst, Rules: rules, Report: report})
	require.NoError(t, err)
	assert.Equal(t, []string{"gone.md"}, report.Deleted())
	assert.Len(t, readTree(t, dst), 2)
}

func TestPruneDryRun(t *testing.T) {
	dst := t.TempDir()
	writeTree(t, dst, map[string]string{"gone.md": "g"})

	events := make(chan event.Event, 16)
	report := newReport(true)
	deleted, err := Prune(context.Background(), PruneConfig{
		DstRoot: dst,
		Report:  report,
		Events:  events,
		DryRun:  true,
	})
	close(events)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"gone.md"}, report.Deleted())
	assert.Equal(t, map[string]string{"gone.md": "g"}, readTree(t, dst))

	var types []event.Type
	for ev := range events {
		types = append(types, ev.Type)
		if ev.Type == event.FileDeleted {
			assert.True(t, ev.DryRun)
		}
	}
	assert.Equal(t, []event.Type{event.PruneStarted, event.FileDeleted}, types)
}

func TestPruneDryRunMissingRoot(t *testing.T) {
	deleted, err := Prune(context.Background(), PruneConfig{
		DstRoot: filepath.Join(t.TempDir(), "absent"),
		DryRun:  true,
	})
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestPruneLabelsStagingFiles(t *testing.T) {
	dst := t.TempDir()
	writeTree(t, dst, map[string]string{".a.md.1234abcd" + tmpSuffix: "partial"})

	report := keptReport()
	_, err := Prune(context.Background(), PruneConfig{DstRoot: dst, Report: report})
	require.NoError(t, err)

	actions := report.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, ReasonStaging, actions[0].Reason)
	assert.Empty(t, readTree(t, dst))
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/noteworm/internal/classify"
)

func relPaths(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.RelPath
	}
	return out
}

func TestWalkListsRegularFilesSorted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.md":               "b",
		"a.md":               "a",
		"notes/deep/c.md":    "c",
		"img/photo.png":      "png",
		".obsidian/app.json": "{}",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	entries, err := Walk(context.Background(), root, WalkOptions{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{
		".obsidian/app.json",
		"a.md",
		"b.md",
		"img/photo.png",
		"notes/deep/c.md",
	}, relPaths(entries))
}

func TestWalkEntryFields(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes/Idea.MD": "hello"})

	entries, err := Walk(context.Background(), root, WalkOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "notes/Idea.MD", e.RelPath)
	assert.Equal(t, filepath.Join(root, "notes", "Idea.MD"), e.AbsPath)
	assert.Equal(t, int64(5), e.Size)
	assert.Equal(t, "md", e.Ext)
	assert.Equal(t, classify.Markdown, e.Kind)
	assert.False(t, e.Modified.IsZero())
	assert.False(t, e.Created.IsZero())
	assert.Empty(t, e.Digest)
}

func TestWalkSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.md": "x", "dir/inner.md": "y"})
	require.NoError(t, os.Symlink("real.md", filepath.Join(root, "link.md")))
	require.NoError(t, os.Symlink("dir", filepath.Join(root, "dirlink")))

	entries, err := Walk(context.Background(), root, WalkOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/inner.md", "real.md"}, relPaths(entries))
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Walk(context.Background(), filepath.Join(t.TempDir(), "nope"), WalkOptions{})
	require.Error(t, err)

	var ie *IOError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "walk", ie.Op)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWalkRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"f.md": "x"})

	_, err := Walk(context.Background(), filepath.Join(root, "f.md"), WalkOptions{})
	assert.ErrorIs(t, err, ErrNotDir)
}

func TestWalkMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/b/c/d.md": "x"})

	_, err := Walk(context.Background(), root, WalkOptions{MaxDepth: 2})
	assert.ErrorIs(t, err, ErrTooDeep)

	entries, err := Walk(context.Background(), root, WalkOptions{MaxDepth: 3})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWalkSkipHook(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.md":        "k",
		"drop.tmp":       "d",
		"cache/x.md":     "c",
		"notes/cache.md": "n",
	})

	var dirsSeen []string
	entries, err := Walk(context.Background(), root, WalkOptions{
		Skip: func(rel string, isDir bool) bool {
			if isDir {
				dirsSeen = append(dirsSeen, rel)
				return rel == "cache"
			}
			return strings.HasSuffix(rel, ".tmp")
		},
		Workers: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.md", "notes/cache.md"}, relPaths(entries))
	assert.ElementsMatch(t, []string{"cache", "notes"}, dirsSeen)
}

func TestWalkDigest(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.md": "same", "b.md": "same", "c.md": "other"})

	entries, err := Walk(context.Background(), root, WalkOptions{Digest: true})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	want, err := HashFile(filepath.Join(root, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, want, entries[0].Digest)
	assert.Equal(t, entries[0].Digest, entries[1].Digest)
	assert.NotEqual(t, entries[0].Digest, entries[2].Digest)
}

func TestWalkWideTree(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string)
	for i := range 60 {
		for j := range 5 {
			files[fmt.Sprintf("d%02d/s%d/f.md", i, j)] = "x"
		}
	}
	writeTree(t, root, files)

	entries, err := Walk(context.Background(), root, WalkOptions{Workers: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 300)
}

func TestWalkCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/b.md": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, err := Walk(ctx, root, WalkOptions{})
	assert.Nil(t, entries)
	assert.True(t, errors.Is(err, context.Canceled))
}

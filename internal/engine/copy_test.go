package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNoStaging(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, isTmpName(e.Name()), "staging file left behind: %s", e.Name())
	}
}

func TestCopyFileCreatesParentsAndKeepsMode(t *testing.T) {
	src, dst := srcDst(t)
	writeTree(t, src, map[string]string{"notes/a.md": "hello"})
	srcPath := filepath.Join(src, "notes", "a.md")
	require.NoError(t, os.Chmod(srcPath, 0o640))

	dstPath := filepath.Join(dst, "notes", "a.md")
	n, err := (&copier{}).copyFile(context.Background(), entryFor(t, srcPath), dstPath)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	data, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := os.Stat(dstPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assertNoStaging(t, filepath.Dir(dstPath))
}

func TestCopyFileReplacesExisting(t *testing.T) {
	src, dst := srcDst(t)
	writeTree(t, src, map[string]string{"a.md": "new content"})
	writeTree(t, dst, map[string]string{"a.md": "old"})

	_, err := (&copier{}).copyFile(context.Background(), entryFor(t, filepath.Join(src, "a.md")), filepath.Join(dst, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.md": "new content"}, readTree(t, dst))
}

func TestCopyFileRateLimited(t *testing.T) {
	src, dst := srcDst(t)
	data := bytes.Repeat([]byte("z"), 64*1024)
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "big.bin"), data, 0o644))

	c := &copier{limiter: NewBWLimiter(10 << 20)}
	n, err := c.copyFile(context.Background(), entryFor(t, filepath.Join(src, "big.bin")), filepath.Join(dst, "big.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	got, err := os.ReadFile(filepath.Join(dst, "big.bin"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyFileMissingSource(t *testing.T) {
	src, dst := srcDst(t)
	require.NoError(t, os.MkdirAll(src, 0o755))

	_, err := (&copier{}).copyFile(context.Background(),
		FileEntry{AbsPath: filepath.Join(src, "gone.md"), Mode: 0o644},
		filepath.Join(dst, "gone.md"))
	require.Error(t, err)

	var ie *IOError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "copy", ie.Op)
	assertNoStaging(t, dst)
	_, err = os.Stat(filepath.Join(dst, "gone.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestTmpName(t *testing.T) {
	name := tmpName(filepath.Join("vault", "notes", "a.md"))
	assert.Equal(t, filepath.Join("vault", "notes"), filepath.Dir(name))

	base := filepath.Base(name)
	assert.True(t, strings.HasPrefix(base, ".a.md."))
	assert.True(t, isTmpName(base))
	assert.False(t, isTmpName("a.md"))
	assert.NotEqual(t, name, tmpName(filepath.Join("vault", "notes", "a.md")))
}

func TestCleanupTmpFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".x.md.abcd1234"+tmpSuffix)
	require.NoError(t, os.WriteFile(p, []byte("partial"), 0o600))

	RegisterTmp(p)
	assert.Equal(t, 1, CleanupTmpFiles())
	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, CleanupTmpFiles())
}

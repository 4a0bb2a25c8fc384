package engine

import (
	"io/fs"
	"time"

	"github.com/bamsammich/noteworm/internal/classify"
	"github.com/bamsammich/noteworm/internal/platform"
)

// FileEntry describes one regular file found by Walk. Entries are built
// fresh on every walk and never modified afterwards.
type FileEntry struct {
	Created  time.Time
	Modified time.Time
	AbsPath  string
	RelPath  string // slash-separated, relative to the walk root; the identity key
	Ext      string // lower-cased, without the dot; empty when absent
	Digest   string // hex BLAKE3, only set when walking with WalkOptions.Digest
	Size     int64
	Mode     fs.FileMode
	Kind     classify.Kind
}

func newEntry(absPath, relPath string, info fs.FileInfo, c *classify.Classifier) FileEntry {
	modified := info.ModTime().Local()
	created := modified
	if bt, ok := platform.BirthTime(absPath, info); ok {
		created = bt.Local()
	}

	return FileEntry{
		AbsPath:  absPath,
		RelPath:  relPath,
		Size:     info.Size(),
		Mode:     info.Mode(),
		Created:  created,
		Modified: modified,
		Ext:      classify.Ext(relPath),
		Kind:     c.Classify(relPath),
	}
}

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDir is returned when a tree root is not a directory.
	ErrNotDir = errors.New("not a directory")
	// ErrIsDir is returned when a destination file path is occupied by a directory.
	ErrIsDir = errors.New("destination is a directory")
	// ErrTooDeep is returned when a tree nests deeper than WalkOptions.MaxDepth.
	ErrTooDeep = errors.New("directory nesting too deep")
	// ErrNotLocal is returned for a relative path that would leave its root.
	ErrNotLocal = errors.New("path escapes the tree root")
	// ErrOverlap is returned when the source and destination trees nest.
	ErrOverlap = errors.New("source and destination overlap")
)

// IOError wraps every filesystem failure raised by the engine. Op names the
// step that failed (walk, readdir, stat, open, compare, mkdir, copy, rename,
// delete, hash) and Path the file or directory involved.
type IOError struct {
	Err  error
	Op   string
	Path string
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ioErr wraps err unless it is nil or already an *IOError.
func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ie *IOError
	if errors.As(err, &ie) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

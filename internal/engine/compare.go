package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultBlockSize is the chunk size StreamComparator reads from each file.
const DefaultBlockSize = 10000

// Verdict is the outcome of comparing a source file with its destination.
type Verdict int

const (
	// Identical means the destination already holds the source content.
	Identical Verdict = iota
	// Differs means the destination must be rewritten.
	Differs
	// Indeterminate means one of the files could not be read.
	Indeterminate
)

func (v Verdict) String() string {
	switch v {
	case Identical:
		return "identical"
	case Differs:
		return "differs"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// Comparison carries a verdict and, for Indeterminate, the read error.
type Comparison struct {
	Err     error
	Verdict Verdict
}

// Comparator decides whether a destination file already matches its source.
// Implementations must not modify either file.
type Comparator interface {
	Compare(ctx context.Context, src, dst FileEntry) Comparison
}

// Strategy names a Comparator implementation.
type Strategy string

const (
	StrategyStream Strategy = "stream"
	StrategyDigest Strategy = "digest"
)

// ParseStrategy validates a strategy name. The empty string selects stream.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyStream:
		return StrategyStream, nil
	case StrategyDigest:
		return StrategyDigest, nil
	default:
		return "", fmt.Errorf("unknown compare strategy %q (want stream or digest)", s)
	}
}

// Comparator returns the implementation for s.
func (s Strategy) Comparator() Comparator {
	if s == StrategyDigest {
		return DigestComparator{}
	}
	return StreamComparator{}
}

func indeterminate(err error) Comparison {
	return Comparison{Verdict: Indeterminate, Err: err}
}

// StreamComparator compares sizes, then reads both files block by block and
// stops at the first differing block.
type StreamComparator struct {
	BlockSize int
}

func (c StreamComparator) Compare(ctx context.Context, src, dst FileEntry) Comparison {
	if src.Size != dst.Size {
		return Comparison{Verdict: Differs}
	}

	sf, err := os.Open(src.AbsPath)
	if err != nil {
		return indeterminate(ioErr("open", src.AbsPath, err))
	}
	defer sf.Close()

	df, err := os.Open(dst.AbsPath)
	if err != nil {
		return indeterminate(ioErr("open", dst.AbsPath, err))
	}
	defer df.Close()

	block := c.BlockSize
	if block <= 0 {
		block = DefaultBlockSize
	}
	sbuf := make([]byte, block)
	dbuf := make([]byte, block)

	for {
		if err := ctx.Err(); err != nil {
			return indeterminate(err)
		}

		sn, err := readBlock(sf, sbuf)
		if err != nil {
			return indeterminate(ioErr("compare", src.AbsPath, err))
		}
		dn, err := readBlock(df, dbuf)
		if err != nil {
			return indeterminate(ioErr("compare", dst.AbsPath, err))
		}

		if sn != dn || !bytes.Equal(sbuf[:sn], dbuf[:dn]) {
			return Comparison{Verdict: Differs}
		}
		if sn < block {
			return Comparison{Verdict: Identical}
		}
	}
}

// readBlock fills buf, returning a short count only at end of file.
func readBlock(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	return n, err
}

// DigestComparator compares BLAKE3 digests. It uses FileEntry.Digest when the
// walk computed one and hashes the file otherwise.
type DigestComparator struct{}

func (DigestComparator) Compare(_ context.Context, src, dst FileEntry) Comparison {
	if src.Size != dst.Size {
		return Comparison{Verdict: Differs}
	}

	sd, err := entryDigest(src)
	if err != nil {
		return indeterminate(err)
	}
	dd, err := entryDigest(dst)
	if err != nil {
		return indeterminate(err)
	}
	if sd != dd {
		return Comparison{Verdict: Differs}
	}
	return Comparison{Verdict: Identical}
}

func entryDigest(e FileEntry) (string, error) {
	if e.Digest != "" {
		return e.Digest, nil
	}
	return HashFile(e.AbsPath)
}

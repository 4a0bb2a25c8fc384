package engine

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

const hashBufSize = 64 << 10

// HashFile returns the hex BLAKE3 digest of the file at path. Failures are
// *IOError values with Op "hash".
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioErr("hash", path, err)
	}
	defer f.Close()

	digest, err := digestReader(f)
	if err != nil {
		return "", ioErr("hash", path, err)
	}
	return digest, nil
}

func digestReader(r io.Reader) (string, error) {
	h := blake3.New()
	if _, err := io.CopyBuffer(h, r, make([]byte, hashBufSize)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

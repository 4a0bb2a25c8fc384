package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// tmpSuffix marks staging files written next to their final destination.
const tmpSuffix = ".noteworm-tmp"

// globalTmpRegistry tracks staging files so an interrupted run can remove
// them before exiting.
var globalTmpRegistry = &tmpRegistry{}

type tmpRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// tmpName returns a unique staging path beside dstPath.
func tmpName(dstPath string) string {
	id := uuid.New().String()[:8]
	return filepath.Join(filepath.Dir(dstPath), fmt.Sprintf(".%s.%s%s", filepath.Base(dstPath), id, tmpSuffix))
}

// isTmpName reports whether a base name looks like a staging file.
func isTmpName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, tmpSuffix)
}

// RegisterTmp adds a staging file path to the global registry.
func RegisterTmp(path string) {
	globalTmpRegistry.mu.Lock()
	defer globalTmpRegistry.mu.Unlock()
	if globalTmpRegistry.paths == nil {
		globalTmpRegistry.paths = make(map[string]struct{})
	}
	globalTmpRegistry.paths[path] = struct{}{}
}

// DeregisterTmp removes a staging file path from the global registry.
func DeregisterTmp(path string) {
	globalTmpRegistry.mu.Lock()
	defer globalTmpRegistry.mu.Unlock()
	delete(globalTmpRegistry.paths, path)
}

// CleanupTmpFiles removes all registered staging files and returns how many
// it tried to remove.
func CleanupTmpFiles() int {
	globalTmpRegistry.mu.Lock()
	paths := make([]string, 0, len(globalTmpRegistry.paths))
	for p := range globalTmpRegistry.paths {
		paths = append(paths, p)
	}
	globalTmpRegistry.paths = nil
	globalTmpRegistry.mu.Unlock()

	for _, p := range paths {
		_ = os.Remove(p)
	}
	return len(paths)
}

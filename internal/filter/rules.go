// Package filter decides which relative paths the sync engine must leave
// alone: protected prefixes are never pruned from the destination, and
// excluded paths are neither copied nor pruned.
package filter

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// DefaultProtect is the prefix protected when no other is configured.
const DefaultProtect = ".git"

// Rules holds protected prefixes and exclude patterns. A nil *Rules protects
// and excludes nothing.
type Rules struct {
	protect  []string
	excludes []*pattern
}

// NewRules creates an empty rule set.
func NewRules() *Rules {
	return &Rules{}
}

// DefaultRules returns a rule set protecting DefaultProtect.
func DefaultRules() *Rules {
	r := NewRules()
	r.protect = append(r.protect, DefaultProtect)
	return r
}

// AddProtect protects every path equal to or below prefix. The prefix is
// relative to the destination root and matches whole path components.
func (r *Rules) AddProtect(prefix string) error {
	clean, err := cleanRel(prefix)
	if err != nil {
		return fmt.Errorf("protect %q: %w", prefix, err)
	}
	for _, p := range r.protect {
		if p == clean {
			return nil
		}
	}
	r.protect = append(r.protect, clean)
	return nil
}

// AddExclude adds a glob pattern; see compilePattern for the syntax.
func (r *Rules) AddExclude(glob string) error {
	p, err := compilePattern(glob)
	if err != nil {
		return fmt.Errorf("exclude %q: %w", glob, err)
	}
	r.excludes = append(r.excludes, p)
	return nil
}

// Protected reports whether relPath lies under a protected prefix.
func (r *Rules) Protected(relPath string) bool {
	if r == nil {
		return false
	}
	rel := filepath.ToSlash(relPath)
	for _, p := range r.protect {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

// Excluded reports whether relPath matches an exclude pattern.
func (r *Rules) Excluded(relPath string) bool {
	if r == nil {
		return false
	}
	rel := filepath.ToSlash(relPath)
	for _, p := range r.excludes {
		if p.match(rel) {
			return true
		}
	}
	return false
}

// Prunable reports whether a destination-only file at relPath may be deleted.
func (r *Rules) Prunable(relPath string) bool {
	return !r.Protected(relPath) && !r.Excluded(relPath)
}

// Protects returns the configured protected prefixes.
func (r *Rules) Protects() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.protect...)
}

// Excludes returns the configured exclude patterns as written.
func (r *Rules) Excludes() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.excludes))
	for i, p := range r.excludes {
		out[i] = p.original
	}
	return out
}

func cleanRel(p string) (string, error) {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return "", fmt.Errorf("empty prefix")
	}
	clean := path.Clean(strings.TrimSuffix(p, "/"))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("prefix must be a relative path inside the tree")
	}
	return clean, nil
}

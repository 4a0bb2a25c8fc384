package engine

import (
	"sort"
	"sync"
)

// Op is the action taken for one path.
type Op int

const (
	OpCopy Op = iota
	OpSkip
	OpDelete
	OpFail
)

func (o Op) String() string {
	switch o {
	case OpCopy:
		return "copy"
	case OpSkip:
		return "skip"
	case OpDelete:
		return "delete"
	case OpFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Reasons attached to actions.
const (
	ReasonMissing       = "missing"
	ReasonChanged       = "changed"
	ReasonNotRegular    = "not a regular file"
	ReasonIdentical     = "identical"
	ReasonIndeterminate = "indeterminate"
	ReasonExtraneous    = "extraneous"
	ReasonStaging       = "stale staging file"
)

// Action records what a run did, or in dry-run mode would do, for one path.
type Action struct {
	Err    error
	Path   string // slash-separated, relative to the tree roots
	Reason string
	Size   int64
	Op     Op
}

// Report is the ordered set of actions from one run. It is safe for
// concurrent use while the run is in progress.
type Report struct {
	kept    map[string]struct{}
	actions []Action
	mu      sync.Mutex
	DryRun  bool
}

func newReport(dryRun bool) *Report {
	return &Report{DryRun: dryRun, kept: make(map[string]struct{})}
}

func (r *Report) add(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}

// keep marks a source path as handled so the prune phase leaves it alone.
func (r *Report) keep(relPath string) {
	r.mu.Lock()
	r.kept[relPath] = struct{}{}
	r.mu.Unlock()
}

func (r *Report) isKept(relPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.kept[relPath]
	return ok
}

// Actions returns all actions sorted by path, then by op.
func (r *Report) Actions() []Action {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Op < out[j].Op
	})
	return out
}

// Paths returns the sorted paths of every action with the given op.
func (r *Report) Paths(op Op) []string {
	var out []string
	for _, a := range r.Actions() {
		if a.Op == op {
			out = append(out, a.Path)
		}
	}
	return out
}

func (r *Report) Copied() []string  { return r.Paths(OpCopy) }
func (r *Report) Skipped() []string { return r.Paths(OpSkip) }
func (r *Report) Deleted() []string { return r.Paths(OpDelete) }
func (r *Report) Failed() []string  { return r.Paths(OpFail) }

// verifiable returns the paths whose destination should now match the
// source byte for byte.
func (r *Report) verifiable() []string {
	var out []string
	for _, a := range r.Actions() {
		if a.Op == OpCopy || (a.Op == OpSkip && a.Reason == ReasonIdentical) {
			out = append(out, a.Path)
		}
	}
	return out
}

// Counts returns the number of actions per op.
func (r *Report) Counts() map[Op]int {
	counts := make(map[Op]int, 4)
	if r == nil {
		return counts
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		counts[a.Op]++
	}
	return counts
}

// Kept returns the sorted source paths the run handled, including failures.
func (r *Report) Kept() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	out := make([]string, 0, len(r.kept))
	for p := range r.kept {
		out = append(out, p)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

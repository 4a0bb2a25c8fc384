package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	WalkStarted Type = iota + 1
	WalkComplete
	FileCopied
	FileSkipped
	FileDeleted
	FileFailed
	PruneStarted
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	WalkStarted:   "WalkStarted",
	WalkComplete:  "WalkComplete",
	FileCopied:    "FileCopied",
	FileSkipped:   "FileSkipped",
	FileDeleted:   "FileDeleted",
	FileFailed:    "FileFailed",
	PruneStarted:  "PruneStarted",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // relative path
	Reason    string // why a file was copied or skipped
	Size      int64  // file size
	Total     int64  // total files (WalkComplete)
	TotalSize int64  // total bytes (WalkComplete)
	Error     error
	DryRun    bool
}

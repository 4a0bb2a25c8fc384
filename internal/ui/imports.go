package ui

import "github.com/bamsammich/noteworm/internal/event"

// Event is re-exported so presenters read naturally.
type Event = event.Event

// Re-export event types for convenience.
const (
	WalkStarted   = event.WalkStarted
	WalkComplete  = event.WalkComplete
	FileCopied    = event.FileCopied
	FileSkipped   = event.FileSkipped
	FileDeleted   = event.FileDeleted
	FileFailed    = event.FileFailed
	PruneStarted  = event.PruneStarted
	VerifyStarted = event.VerifyStarted
	VerifyOK      = event.VerifyOK
	VerifyFailed  = event.VerifyFailed
)

package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "WalkStarted", typ: WalkStarted},
		{want: "WalkComplete", typ: WalkComplete},
		{want: "FileCopied", typ: FileCopied},
		{want: "FileSkipped", typ: FileSkipped},
		{want: "FileDeleted", typ: FileDeleted},
		{want: "FileFailed", typ: FileFailed},
		{want: "PruneStarted", typ: PruneStarted},
		{want: "VerifyStarted", typ: VerifyStarted},
		{want: "VerifyOK", typ: VerifyOK},
		{want: "VerifyFailed", typ: VerifyFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringOutOfRange(t *testing.T) {
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(-1).String())
	assert.Equal(t, "Unknown", (VerifyFailed + 1).String())
}

func TestDecisionEvent(t *testing.T) {
	e := Event{Type: FileSkipped, Path: "notes/a.md", Reason: "identical", Size: 12, DryRun: true}
	assert.Equal(t, "FileSkipped", e.Type.String())
	assert.Equal(t, "identical", e.Reason)
	assert.True(t, e.DryRun)
	assert.True(t, e.Timestamp.IsZero())

	failed := Event{Type: FileFailed, Path: "notes/b.md", Error: errors.New("denied")}
	assert.False(t, failed.DryRun)
	assert.EqualError(t, failed.Error, "denied")
}

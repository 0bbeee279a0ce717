package playback

import (
	"path/filepath"
	"time"

	"github.com/llehouerou/reprise/internal/errmsg"
)

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// ResumeEvent is emitted when a file starts from its saved offset.
type ResumeEvent struct {
	Path     string
	Offset   time.Duration
	Duration time.Duration // 0 when the engine does not know it yet
}

// ErrorEvent is emitted when an operation fails without the failure being
// returned to a caller, or when the UI should show it anyway.
type ErrorEvent struct {
	Op   errmsg.Op
	Path string // media path if applicable
	Err  error
}

// Message returns the user-facing text of the error.
func (e ErrorEvent) Message() string {
	if e.Path == "" {
		return errmsg.Format(e.Op, e.Err)
	}
	return errmsg.FormatWith(e.Op, filepath.Base(e.Path), e.Err)
}

// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Media operations
	OpMediaOpen Op = "open media"
	OpMediaTags Op = "read media tags"

	// Transport operations
	OpPlaybackToggle Op = "toggle playback"
	OpPlaybackStop   Op = "stop playback"
	OpSeek           Op = "seek"
	OpRateChange     Op = "change playback speed"
	OpVolumeChange   Op = "change volume"

	// Resume data
	OpPositionLoad Op = "load saved positions"
	OpPositionSave Op = "save playback position"

	// Preferences
	OpPreferencesLoad Op = "load preferences"
	OpPreferencesSave Op = "save preferences"

	// Desktop integration
	OpMPRISStart Op = "start media key integration"
	OpNotify     Op = "send notification"

	// Lifecycle
	OpInitialize Op = "initialize application"
	OpShutdown   Op = "shut down cleanly"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

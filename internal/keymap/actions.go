// Package keymap defines key bindings and action dispatch for the player.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Transport actions
	ActionPlayPause   Action = "play_pause"
	ActionStop        Action = "stop"
	ActionSeekBack    Action = "seek_back"
	ActionSeekForward Action = "seek_forward"
	ActionVolumeUp    Action = "volume_up"
	ActionVolumeDown  Action = "volume_down"
	ActionSpeedUp     Action = "speed_up"
	ActionSpeedDown   Action = "speed_down"
	ActionToggleTime  Action = "toggle_time"

	// Resume prompt
	ActionConfirmYes Action = "confirm_yes"
	ActionConfirmNo  Action = "confirm_no"
)

// Contexts used by the bindings.
const (
	ContextGlobal   = "global"
	ContextPlayback = "playback"
	ContextPrompt   = "prompt"
)

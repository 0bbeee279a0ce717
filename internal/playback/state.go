package playback

import (
	"fmt"
	"strings"

	"github.com/llehouerou/reprise/internal/engine"
)

// State represents the playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

func stateFromEngine(es engine.State) State {
	switch es {
	case engine.Playing:
		return StatePlaying
	case engine.Paused:
		return StatePaused
	default:
		return StateStopped
	}
}

// ResumeMode defines what happens when a file with a saved offset is opened.
type ResumeMode int

const (
	ResumeAuto   ResumeMode = iota // seek to the saved offset silently
	ResumePrompt                   // ask the Confirmer first
	ResumeOff                      // always start from the beginning
)

// String returns the configuration name of the mode.
func (m ResumeMode) String() string {
	switch m {
	case ResumeAuto:
		return "auto"
	case ResumePrompt:
		return "prompt"
	case ResumeOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseResumeMode parses "auto", "prompt" or "off".
func ParseResumeMode(s string) (ResumeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return ResumeAuto, nil
	case "prompt":
		return ResumePrompt, nil
	case "off":
		return ResumeOff, nil
	default:
		return ResumeAuto, fmt.Errorf("unknown resume mode %q", s)
	}
}

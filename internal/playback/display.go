package playback

import (
	"fmt"
	"time"

	"github.com/llehouerou/reprise/internal/timefmt"
)

// Display is everything a front-end needs to render the player.
type Display struct {
	MediaPath string
	Title     string

	CurrentText string // elapsed, "00:00:00" until the duration is known
	TotalText   string // duration, or "-HH:MM:SS" remaining when ShowRemaining
	VolumeText  string // e.g. "50%"

	State         State
	Playing       bool // play/pause label
	AudioOnly     bool // show the audio placeholder instead of the video surface
	ShowRemaining bool
	Rate          float64
	Volume        int

	Position time.Duration
	Duration time.Duration

	// Progress bar range and value, in milliseconds.
	ProgressMax   int64
	ProgressValue int64
}

// Display derives the rendered values from the session.
func (s Session) Display() Display {
	d := Display{
		MediaPath:     s.MediaPath,
		Title:         s.Title,
		CurrentText:   timefmt.Format(0),
		TotalText:     timefmt.Format(s.Duration),
		VolumeText:    fmt.Sprintf("%d%%", s.Volume),
		State:         s.State,
		Playing:       s.State == StatePlaying,
		AudioOnly:     s.AudioOnly,
		ShowRemaining: s.ShowRemaining,
		Rate:          s.Rate,
		Volume:        s.Volume,
		Position:      s.Position,
		Duration:      s.Duration,
		ProgressMax:   s.Duration.Milliseconds(),
	}

	if s.Duration > 0 {
		pos := s.clampPosition(s.Position)
		d.CurrentText = timefmt.Format(pos)
		d.ProgressValue = pos.Milliseconds()
	}
	if s.ShowRemaining {
		d.TotalText = timefmt.FormatRemaining(s.Position, s.Duration)
	}
	return d
}

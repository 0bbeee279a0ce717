package playback

import (
	"time"

	"github.com/llehouerou/reprise/internal/media"
)

// Session is the transient state of the controller.
//
// Volume and ShowRemaining are user preferences and survive opening another
// file; everything else is reset. Once Duration is known, Position stays
// within [0, Duration].
type Session struct {
	MediaPath     string
	Title         string
	State         State
	Position      time.Duration
	Duration      time.Duration
	Volume        int
	Rate          float64
	AudioOnly     bool
	ShowRemaining bool
}

// HasMedia reports whether a file is open.
func (s Session) HasMedia() bool {
	return s.MediaPath != ""
}

// reset starts a session for path, keeping the user preferences. The audio
// flag is guessed from the extension until the engine reports its tracks.
func (s *Session) reset(path string, info media.Info) {
	*s = Session{
		MediaPath:     path,
		Title:         info.Label(),
		State:         StateStopped,
		Volume:        s.Volume,
		Rate:          1,
		AudioOnly:     info.Kind == media.Audio,
		ShowRemaining: s.ShowRemaining,
	}
}

// clear forgets the media but keeps the user preferences.
func (s *Session) clear() {
	*s = Session{
		State:         StateStopped,
		Volume:        s.Volume,
		Rate:          1,
		ShowRemaining: s.ShowRemaining,
	}
}

// clampPosition enforces 0 ≤ p ≤ Duration once Duration is known.
func (s Session) clampPosition(p time.Duration) time.Duration {
	p = max(p, 0)
	if s.Duration > 0 {
		p = min(p, s.Duration)
	}
	return p
}

package playback

import (
	"context"
	"time"
)

// Service defines the playback controller contract consumed by front-ends.
type Service interface {
	// Media
	OpenMedia(ctx context.Context, path string) error
	SavedOffset(path string) (time.Duration, bool)

	// Transport
	TogglePlayPause() error
	Play() error
	Pause() error
	Stop() error
	SeekRelative(delta time.Duration) error
	SeekForward() error
	SeekBackward() error
	SeekAbsolute(target time.Duration) error
	SetRate(rate float64) error
	CycleRate(step int) (float64, error)
	SetVolume(percent int) error
	AdjustVolume(delta int) (int, error)

	// Display
	ToggleTimeDisplay() bool
	Session() Session
	Display() Display

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Shutdown() error
}

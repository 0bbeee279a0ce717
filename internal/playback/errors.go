package playback

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath        = errors.New("playback: empty media path")
	ErrUnsupportedMedia = errors.New("playback: unsupported media type")
	ErrNegativeSeek     = errors.New("playback: seek target is negative")
	ErrInvalidRate      = errors.New("playback: rate must be positive")
	ErrInvalidVolume    = errors.New("playback: volume must be within 0-100")
	ErrClosed           = errors.New("playback: controller is shut down")
	ErrSuperseded       = errors.New("playback: superseded by a newer open")
)

// MediaLoadError reports that the engine could not open a media file.
// The session stays Stopped with no media; the open is not retried.
type MediaLoadError struct {
	Path string
	Err  error
}

func (e *MediaLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *MediaLoadError) Unwrap() error {
	return e.Err
}

package playback

import (
	"context"
	"time"

	"github.com/llehouerou/reprise/internal/engine"
)

// Run forwards engine telemetry to the handlers until ctx is cancelled, the
// controller shuts down or the engine closes its event channel.
func (c *Controller) Run(ctx context.Context) {
	events := c.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ev)
		}
	}
}

func (c *Controller) handleEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.StateChanged:
		c.OnStateChanged(stateFromEngine(ev.State))
	case engine.PositionChanged:
		c.OnPositionChanged(ev.Position)
	case engine.DurationChanged:
		c.OnDurationChanged(ev.Duration)
	case engine.TracksChanged:
		c.OnTracksChanged(ev.HasAudio, ev.HasVideo)
	case engine.EndOfFile:
		c.OnEndOfFile()
	}
}

// The On* handlers only update the session and notify subscribers. Repeated
// values are ignored, and so are events arriving with no media open or
// after shutdown started.

// OnStateChanged records a state reported by the engine.
func (c *Controller) OnStateChanged(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() || !c.readyLocked() {
		return
	}
	if c.setStateLocked(s) {
		c.broadcastDisplayLocked()
	}
}

// OnPositionChanged records the engine's position.
func (c *Controller) OnPositionChanged(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() || !c.readyLocked() {
		return
	}
	pos = c.session.clampPosition(pos)
	if pos == c.session.Position {
		return
	}
	c.session.Position = pos
	c.broadcastDisplayLocked()
}

// OnDurationChanged records the media duration and re-clamps the position.
func (c *Controller) OnDurationChanged(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() || !c.readyLocked() {
		return
	}
	d = max(d, 0)
	if d == c.session.Duration {
		return
	}
	c.session.Duration = d
	c.session.Position = c.session.clampPosition(c.session.Position)
	c.broadcastDisplayLocked()
}

// OnTracksChanged re-derives the audio-only flag from the engine's tracks.
func (c *Controller) OnTracksChanged(hasAudio, hasVideo bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() || !c.readyLocked() {
		return
	}
	if !hasAudio && !hasVideo {
		return
	}
	audioOnly := hasAudio && !hasVideo
	if audioOnly == c.session.AudioOnly {
		return
	}
	c.session.AudioOnly = audioOnly
	c.broadcastDisplayLocked()
}

// OnEndOfFile stops the session at the end of the media. The saved offset
// is reset so the next open starts from the beginning.
func (c *Controller) OnEndOfFile() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() || !c.readyLocked() {
		return
	}
	if c.session.State == StateStopped {
		return
	}
	_ = c.persistLocked(c.session.MediaPath, 0)
	c.setStateLocked(StateStopped)
	if c.session.Duration > 0 {
		c.session.Position = c.session.Duration
	}
	c.broadcastDisplayLocked()
}

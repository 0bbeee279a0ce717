package playback

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/llehouerou/reprise/internal/errmsg"
)

// Rates offered by CycleRate.
var Rates = []float64{0.5, 0.75, 0.85, 1.0, 1.25, 1.5, 1.75, 2.0}

// TogglePlayPause pauses when playing and plays otherwise.
// Without media it does nothing.
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	if !c.readyLocked() {
		return nil
	}

	if c.session.State == StatePlaying {
		return c.pauseLocked()
	}
	return c.playLocked()
}

// Play starts or resumes playback. Without media it does nothing.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	if !c.readyLocked() || c.session.State == StatePlaying {
		return nil
	}
	return c.playLocked()
}

// Pause pauses playback. It does nothing unless playing.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	if !c.readyLocked() || c.session.State != StatePlaying {
		return nil
	}
	return c.pauseLocked()
}

func (c *Controller) playLocked() error {
	if err := c.engine.Play(); err != nil {
		c.transportFailedLocked(errmsg.OpPlaybackToggle, err)
		return fmt.Errorf("play: %w", err)
	}
	c.setStateLocked(StatePlaying)
	c.refreshAudioOnlyLocked()
	c.broadcastDisplayLocked()
	return nil
}

func (c *Controller) pauseLocked() error {
	if err := c.engine.Pause(); err != nil {
		c.transportFailedLocked(errmsg.OpPlaybackToggle, err)
		return fmt.Errorf("pause: %w", err)
	}
	c.setStateLocked(StatePaused)
	c.refreshAudioOnlyLocked()
	c.broadcastDisplayLocked()
	return nil
}

func (c *Controller) transportFailedLocked(op errmsg.Op, err error) {
	c.log.WithField("path", c.session.MediaPath).WithError(err).Warn(errmsg.Format(op, err))
	c.broadcastError(op, c.session.MediaPath, err)
}

// Stop stops the engine and saves the position the file was stopped at.
// The save is flushed before Stop returns; a failed save is logged and
// broadcast but not returned. Stopping a file that is neither playing nor
// paused saves nothing.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	if !c.readyLocked() {
		return nil
	}

	path := c.session.MediaPath
	pos := c.positionLocked()
	// A stopped file already holds its saved offset, and the engine reports
	// 0 until playback starts again.
	active := c.session.State.IsActive()

	stopErr := c.engine.Stop()
	if stopErr != nil {
		c.transportFailedLocked(errmsg.OpPlaybackStop, stopErr)
	}

	if active {
		_ = c.persistLocked(path, pos)
	}

	c.setStateLocked(StateStopped)
	c.session.Position = 0
	c.broadcastDisplayLocked()

	if stopErr != nil {
		return fmt.Errorf("stop: %w", stopErr)
	}
	return nil
}

// SeekRelative moves by delta, clamped to [0, Duration].
func (c *Controller) SeekRelative(delta time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	if !c.readyLocked() {
		return nil
	}

	target := lo.Clamp(c.session.Position+delta, 0, c.session.Duration)
	return c.seekLocked(target)
}

// SeekForward moves forward by the configured step.
func (c *Controller) SeekForward() error {
	return c.SeekRelative(c.seekStep)
}

// SeekBackward moves backward by the configured step.
func (c *Controller) SeekBackward() error {
	return c.SeekRelative(-c.seekStep)
}

// SeekAbsolute moves to target. Targets past the end are left to the engine.
func (c *Controller) SeekAbsolute(target time.Duration) error {
	if target < 0 {
		return ErrNegativeSeek
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	if !c.readyLocked() {
		return nil
	}
	return c.seekLocked(target)
}

func (c *Controller) seekLocked(target time.Duration) error {
	if err := c.engine.Seek(target); err != nil {
		c.transportFailedLocked(errmsg.OpSeek, err)
		return fmt.Errorf("seek: %w", err)
	}
	c.session.Position = c.session.clampPosition(target)
	c.broadcastDisplayLocked()
	return nil
}

// SetRate forwards a playback speed multiplier to the engine.
func (c *Controller) SetRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return ErrInvalidRate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	return c.setRateLocked(rate)
}

func (c *Controller) setRateLocked(rate float64) error {
	if !c.readyLocked() {
		return nil
	}
	if err := c.engine.SetRate(rate); err != nil {
		c.transportFailedLocked(errmsg.OpRateChange, err)
		return fmt.Errorf("set rate: %w", err)
	}
	c.session.Rate = rate
	c.broadcastDisplayLocked()
	return nil
}

// CycleRate moves step entries along Rates from the entry closest to the
// current rate, stopping at either end, and returns the new rate.
func (c *Controller) CycleRate(step int) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return 0, ErrClosed
	}

	current := closestRate(c.session.Rate)
	next := Rates[lo.Clamp(current+step, 0, len(Rates)-1)]
	if err := c.setRateLocked(next); err != nil {
		return c.session.Rate, err
	}
	return c.session.Rate, nil
}

func closestRate(rate float64) int {
	best := slices.Index(Rates, 1.0)
	for i, r := range Rates {
		if math.Abs(r-rate) < math.Abs(Rates[best]-rate) {
			best = i
		}
	}
	return best
}

// SetVolume sets the volume percent. Values outside [0, 100] are rejected
// and leave the volume unchanged.
func (c *Controller) SetVolume(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidVolume, percent)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	return c.setVolumeLocked(percent)
}

// AdjustVolume changes the volume by delta, clamped to [0, 100], and returns
// the resulting volume.
func (c *Controller) AdjustVolume(delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return c.session.Volume, ErrClosed
	}
	err := c.setVolumeLocked(lo.Clamp(c.session.Volume+delta, 0, 100))
	return c.session.Volume, err
}

func (c *Controller) setVolumeLocked(percent int) error {
	if c.readyLocked() {
		if err := c.engine.SetVolume(percent); err != nil {
			c.transportFailedLocked(errmsg.OpVolumeChange, err)
			return fmt.Errorf("set volume: %w", err)
		}
	}
	if c.session.Volume == percent {
		return nil
	}
	c.session.Volume = percent
	c.savePrefsLocked()
	c.broadcastDisplayLocked()
	return nil
}

// ToggleTimeDisplay switches the total label between the duration and the
// remaining time, and returns whether remaining time is now shown.
func (c *Controller) ToggleTimeDisplay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.ShowRemaining = !c.session.ShowRemaining
	c.savePrefsLocked()
	c.broadcastDisplayLocked()
	return c.session.ShowRemaining
}

package playback

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/media"
	"github.com/llehouerou/reprise/internal/timefmt"
)

// OpenMedia opens path and starts playing it.
//
// If another file is playing or paused, its position is saved first. The
// controller lock is released while the engine loads the file and while the
// Confirmer decides whether to apply a saved offset; commands are ignored
// during the load. An open started meanwhile wins and this one returns
// ErrSuperseded.
func (c *Controller) OpenMedia(ctx context.Context, path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if !media.IsSupported(path, c.extensions) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMedia, path)
	}
	if c.closed() {
		return ErrClosed
	}

	log := c.log.WithField("path", path)

	info, err := c.readInfo(path)
	if err != nil {
		log.WithError(err).Debug(errmsg.Format(errmsg.OpMediaTags, err))
	}

	c.mu.Lock()
	if c.closed() {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gen++
	gen := c.gen

	// A stopped file was saved when it stopped.
	if prev := c.session.MediaPath; prev != "" && c.session.State.IsActive() {
		_ = c.persistLocked(prev, c.positionLocked())
	}

	c.session.reset(path, info)
	c.loading = true
	c.broadcastDisplayLocked()
	c.mu.Unlock()

	ran, loadErr := c.load(gen, path)

	c.mu.Lock()
	if c.closed() {
		c.mu.Unlock()
		return ErrClosed
	}
	if !ran || gen != c.gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.loading = false
	if loadErr != nil {
		err := &MediaLoadError{Path: path, Err: loadErr}
		c.session.clear()
		c.setStateLocked(StateStopped)
		log.WithError(loadErr).Warn(errmsg.Format(errmsg.OpMediaOpen, loadErr))
		c.broadcastError(errmsg.OpMediaOpen, path, err)
		c.broadcastDisplayLocked()
		c.mu.Unlock()
		return err
	}

	c.session.Duration = c.engine.Duration()
	c.refreshAudioOnlyLocked()
	c.applyOutputLocked(log)

	offset, _ := c.store.Get(path)
	mode := c.resumeMode
	confirmer := c.confirmer
	c.broadcastDisplayLocked()
	c.mu.Unlock()

	resume := shouldResume(ctx, mode, confirmer, ResumeRequest{
		Path:       path,
		Offset:     offset,
		OffsetText: timefmt.Format(offset),
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return ErrClosed
	}
	if gen != c.gen {
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if resume {
		if err := c.engine.Seek(offset); err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpSeek, err))
			c.broadcastError(errmsg.OpSeek, path, err)
			resume = false
		} else {
			c.session.Position = c.session.clampPosition(offset)
		}
	}

	if err := c.engine.Play(); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpMediaOpen, err))
		loadErr := &MediaLoadError{Path: path, Err: err}
		c.broadcastError(errmsg.OpMediaOpen, path, loadErr)
		c.broadcastDisplayLocked()
		return loadErr
	}
	c.setStateLocked(StatePlaying)
	c.refreshAudioOnlyLocked()

	if resume {
		log.WithField("offset", offset.Milliseconds()).Info("resumed from saved position")
		c.broadcastResume(ResumeEvent{Path: path, Offset: offset, Duration: c.session.Duration})
	} else {
		log.Info("media opened")
	}
	c.broadcastDisplayLocked()
	return nil
}

// load runs engine.Load for path without holding the controller lock, so
// telemetry and commands stay responsive while a slow backend opens the file.
// Loads are serialized; one whose open was overtaken before its turn does not
// run, and ran reports false.
func (c *Controller) load(gen uint64, path string) (ran bool, err error) {
	c.loadSlot <- struct{}{}
	defer func() { <-c.loadSlot }()

	c.mu.Lock()
	current := gen == c.gen && !c.closed()
	c.mu.Unlock()
	if !current {
		return false, nil
	}
	return true, c.engine.Load(path)
}

// applyOutputLocked pushes the session's volume and rate to a freshly
// loaded engine.
func (c *Controller) applyOutputLocked(log logrus.FieldLogger) {
	if err := c.engine.SetVolume(c.session.Volume); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpVolumeChange, err))
	}
	if err := c.engine.SetRate(c.session.Rate); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpRateChange, err))
	}
}

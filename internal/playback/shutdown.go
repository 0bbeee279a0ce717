package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/reprise/internal/errmsg"
)

// Shutdown stops playback, saves the position of the file being played and
// unloads the engine. A file that was already stopped keeps the offset saved
// by Stop. Only the first call does anything; later and concurrent calls
// return nil at once. A failing or panicking step is logged and the next
// one still runs. Every command issued afterwards returns ErrClosed.
//
//	closing flag ─► position ─► stop (if active) ─► persist (if active) ─► unload ─► done
func (c *Controller) Shutdown() error {
	if !c.closing.CompareAndSwap(false, true) {
		return nil
	}

	errs := c.shutdownSteps()

	close(c.done)
	c.closeSubscriptions()

	c.log.Info("playback shut down")
	return errors.Join(errs...)
}

// shutdownSteps runs the engine and store steps under the lock. Every step,
// reading the position included, is recovered so the lock is always released.
func (c *Controller) shutdownSteps() []error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.session.MediaPath
	active := c.session.State.IsActive()

	var pos time.Duration
	errs := []error{c.runStep("position", func() error {
		pos = c.positionLocked()
		return nil
	})}
	// Without a position there is nothing safe to save.
	captured := errs[0] == nil

	if active {
		errs = append(errs, c.runStep("stop", c.engine.Stop))
	}
	if path != "" && active && captured {
		errs = append(errs, c.runStep("persist", func() error {
			return c.persistLocked(path, pos)
		}))
	}
	errs = append(errs, c.runStep("unload", c.engine.Unload))

	c.setStateLocked(StateStopped)
	return errs
}

// runStep runs one shutdown step, turning a panic into an error.
func (c *Controller) runStep(name string, fn func() error) (err error) {
	log := c.log.WithField("step", name)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
			log.WithError(err).Error(errmsg.Format(errmsg.OpShutdown, err))
		}
	}()

	if err := fn(); err != nil {
		err = fmt.Errorf("%s: %w", name, err)
		log.WithError(err).Error(errmsg.Format(errmsg.OpShutdown, err))
		return err
	}
	log.Debug("shutdown step done")
	return nil
}

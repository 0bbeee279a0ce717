package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reprise/internal/engine"
	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/media"
	"github.com/llehouerou/reprise/internal/state"
)

// Verify Controller implements Service at compile time.
var _ Service = (*Controller)(nil)

// PositionStore is the durable path → offset mapping.
type PositionStore interface {
	Get(path string) (time.Duration, bool)
	Set(path string, offset time.Duration)
	Flush() error
}

// Options configure a Controller. Zero values are usable.
type Options struct {
	Log        logrus.FieldLogger
	Confirmer  Confirmer
	ResumeMode ResumeMode
	Extensions []string      // accepted extensions; empty accepts nothing
	SeekStep   time.Duration // SeekForward/SeekBackward step (default 2s)
	Volume     int           // initial volume when no preference was saved
	Prefs      state.Interface
	ReadInfo   func(path string) (media.Info, error)
}

const defaultSeekStep = 2 * time.Second

// Controller is the single source of truth for transport state. Commands
// come from front-ends; telemetry comes from the engine through Run.
type Controller struct {
	mu sync.Mutex

	engine     engine.Interface
	store      PositionStore
	prefs      state.Interface
	log        logrus.FieldLogger
	confirmer  Confirmer
	resumeMode ResumeMode
	extensions []string
	seekStep   time.Duration
	readInfo   func(path string) (media.Info, error)

	session Session
	gen     uint64 // bumped by every OpenMedia
	loading bool   // engine.Load of session.MediaPath in progress

	// loadSlot serializes engine.Load calls. It is acquired before mu,
	// never while holding it.
	loadSlot chan struct{}

	subs   []*Subscription
	subsMu sync.RWMutex

	closing atomic.Bool
	done    chan struct{}
}

// New creates a controller over eng and store. The store is expected to be
// loaded already.
func New(eng engine.Interface, store PositionStore, opts Options) *Controller {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	step := opts.SeekStep
	if step <= 0 {
		step = defaultSeekStep
	}
	readInfo := opts.ReadInfo
	if readInfo == nil {
		readInfo = media.ReadInfo
	}

	c := &Controller{
		engine:     eng,
		store:      store,
		prefs:      opts.Prefs,
		log:        log.WithField("component", "playback"),
		confirmer:  opts.Confirmer,
		resumeMode: opts.ResumeMode,
		extensions: opts.Extensions,
		seekStep:   step,
		readInfo:   readInfo,
		loadSlot:   make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	c.session.clear()
	c.session.Volume = min(max(opts.Volume, 0), 100)

	if c.prefs != nil {
		prefs, err := c.prefs.GetPreferences()
		switch {
		case err != nil:
			c.log.WithError(err).Warn(errmsg.Format(errmsg.OpPreferencesLoad, err))
		case prefs != nil:
			c.session.Volume = min(max(prefs.Volume, 0), 100)
			c.session.ShowRemaining = prefs.ShowRemaining
		}
	}
	return c
}

// Session returns a copy of the session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Display returns the rendered values of the session.
func (c *Controller) Display() Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Display()
}

// SavedOffset returns the offset stored for path, if any.
func (c *Controller) SavedOffset(path string) (time.Duration, bool) {
	return c.store.Get(path)
}

// Subscribe creates a new event subscription.
// After Shutdown the subscription is returned already closed.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	select {
	case <-c.done:
		sub.close()
		return sub
	default:
	}
	c.subs = append(c.subs, sub)
	return sub
}

func (c *Controller) closed() bool {
	return c.closing.Load()
}

func (c *Controller) broadcastDisplayLocked() {
	d := c.session.Display()
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendDisplay(d)
	}
}

func (c *Controller) broadcastState(e StateChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(e)
	}
}

func (c *Controller) broadcastResume(e ResumeEvent) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendResume(e)
	}
}

func (c *Controller) broadcastError(op errmsg.Op, path string, err error) {
	e := ErrorEvent{Op: op, Path: path, Err: err}
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendError(e)
	}
}

func (c *Controller) closeSubscriptions() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
}

// setStateLocked updates the state and notifies subscribers if it changed.
func (c *Controller) setStateLocked(s State) bool {
	prev := c.session.State
	if prev == s {
		return false
	}
	c.session.State = s
	c.broadcastState(StateChange{Previous: prev, Current: s})
	return true
}

// refreshAudioOnlyLocked re-derives AudioOnly from the engine's track flags.
// Without any flag the earlier guess is kept.
func (c *Controller) refreshAudioOnlyLocked() {
	hasAudio, hasVideo := c.engine.HasAudio(), c.engine.HasVideo()
	if !hasAudio && !hasVideo {
		return
	}
	c.session.AudioOnly = hasAudio && !hasVideo
}

// positionLocked returns the engine's position clamped to the session.
func (c *Controller) positionLocked() time.Duration {
	return c.session.clampPosition(c.engine.Position())
}

// readyLocked reports whether a file is open and loaded by the engine.
// Commands and engine telemetry are ignored until then.
func (c *Controller) readyLocked() bool {
	return c.session.HasMedia() && !c.loading
}

// persistLocked writes {path: offset} and flushes synchronously. Failures
// are logged and broadcast; the error is returned for callers that collect
// it.
func (c *Controller) persistLocked(path string, offset time.Duration) error {
	c.store.Set(path, offset)
	if err := c.store.Flush(); err != nil {
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"offset": offset.Milliseconds(),
		}).WithError(err).Warn(errmsg.Format(errmsg.OpPositionSave, err))
		c.broadcastError(errmsg.OpPositionSave, path, err)
		return err
	}
	c.log.WithFields(logrus.Fields{
		"path":   path,
		"offset": offset.Milliseconds(),
	}).Debug("position saved")
	return nil
}

func (c *Controller) savePrefsLocked() {
	if c.prefs == nil {
		return
	}
	c.prefs.SavePreferences(state.Preferences{
		Volume:        c.session.Volume,
		ShowRemaining: c.session.ShowRemaining,
	})
}

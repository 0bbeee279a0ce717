package notify

import (
	"context"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/media"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/timefmt"
)

const (
	resumeTimeout = 6000
	errorTimeout  = 8000

	categoryResumed    = "x-reprise.resumed"
	categoryLoadFailed = "x-reprise.load-failed"
)

// Player is what the notification actions drive.
type Player interface {
	Session() playback.Session
	SeekAbsolute(pos time.Duration) error
}

// Options configure Watch.
type Options struct {
	// Player receives the "Start over" action. Without it resume
	// notifications carry no action.
	Player Player
	// Fs is searched for artwork next to the resumed file. Defaults to the
	// OS filesystem.
	Fs  afero.Fs
	Log logrus.FieldLogger
}

// ResumeNotification announces that a file started from its saved offset.
// art, when set, replaces the generic icon.
func ResumeNotification(e playback.ResumeEvent, art string) Notification {
	body := "from " + timefmt.Format(e.Offset)
	if e.Duration > 0 {
		body += " of " + timefmt.Format(e.Duration)
	}
	return Notification{
		Title:    "Resumed " + filepath.Base(e.Path),
		Body:     body,
		Icon:     "media-playback-start",
		Image:    art,
		Category: categoryResumed,
		Timeout:  resumeTimeout,
		Urgency:  UrgencyLow,
	}
}

// LoadFailed reports a file the engine could not open.
func LoadFailed(e playback.ErrorEvent) Notification {
	return Notification{
		Title:    "Cannot play " + filepath.Base(e.Path),
		Body:     e.Message(),
		Icon:     "dialog-error",
		Category: categoryLoadFailed,
		Timeout:  errorTimeout,
		Urgency:  UrgencyNormal,
	}
}

// Watch sends a notification for every resume and every failed open until
// ctx is done or the subscription closes. Resume notifications replace each
// other so quickly switching files leaves a single bubble; its "Start over"
// button rewinds the resumed file if it is still the one open.
func Watch(ctx context.Context, n Notifier, sub *playback.Subscription, opts Options) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	send := func(notif Notification) uint32 {
		id, err := n.Notify(notif)
		if err != nil {
			log.WithError(err).Debug(errmsg.Format(errmsg.OpNotify, err))
			return 0
		}
		return id
	}

	var (
		resumeID    uint32
		resumedPath string
	)
	invoked := n.Invoked()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.Resumed:
			notif := ResumeNotification(e, media.Artwork(fsys, e.Path))
			if opts.Player != nil {
				notif.Actions = []Action{{Key: ActionRestart, Label: "Start over"}}
			}
			notif.ReplacesID = resumeID
			resumeID = send(notif)
			resumedPath = e.Path
		case e := <-sub.Error:
			if e.Op != errmsg.OpMediaOpen {
				continue
			}
			send(LoadFailed(e))
		case inv := <-invoked:
			if inv.Key != ActionRestart || inv.ID == 0 || inv.ID != resumeID || opts.Player == nil {
				continue
			}
			restart(opts.Player, resumedPath, log)
		}
	}
}

// restart rewinds path, unless another file has been opened since.
func restart(p Player, path string, log logrus.FieldLogger) {
	if p.Session().MediaPath != path {
		log.WithField("path", path).Debug("start over ignored, file no longer open")
		return
	}
	if err := p.SeekAbsolute(0); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpSeek, err))
		return
	}
	log.WithField("path", path).Info("restarted from notification")
}

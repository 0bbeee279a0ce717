//go:build linux

package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"net/url"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/media"
	"github.com/llehouerou/reprise/internal/playback"
)

// Options configure an Adapter.
type Options struct {
	Log logrus.FieldLogger
	// Quit is called when a desktop client asks the player to quit.
	// Without it the player does not advertise CanQuit.
	Quit func()
	// Fs is searched for artwork next to the open file. Defaults to the OS
	// filesystem.
	Fs afero.Fs
}

// Adapter connects the playback controller to MPRIS over D-Bus.
type Adapter struct {
	service playback.Service
	server  *server.Server
	events  *events.EventHandler
	sub     *playback.Subscription
	log     logrus.FieldLogger
	done    chan struct{}
}

// New creates and starts a new MPRIS adapter.
func New(service playback.Service, opts Options) (*Adapter, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "mpris")

	a := &Adapter{
		service: service,
		log:     log,
		done:    make(chan struct{}),
	}

	root := &rootAdapter{quit: opts.Quit}
	player := newPlayerAdapter(service, log)
	if opts.Fs != nil {
		player.fs = opts.Fs
	}

	a.server = server.NewServer("reprise", root, player)
	a.events = events.NewEventHandler(a.server)
	a.sub = service.Subscribe()

	go func() {
		if err := a.server.Listen(); err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpMPRISStart, err))
		}
	}()
	go a.forward()

	return a, nil
}

// forward turns controller events into MPRIS property change signals.
func (a *Adapter) forward() {
	var lastPath string
	for {
		select {
		case <-a.done:
			return
		case <-a.sub.Done:
			return
		case <-a.sub.StateChanged:
			a.signal("PlaybackStatus", a.events.Player.OnPlayPause)
		case d := <-a.sub.DisplayChanged:
			if d.MediaPath != lastPath {
				lastPath = d.MediaPath
				a.signal("Metadata", a.events.Player.OnTitle)
			}
		}
	}
}

func (a *Adapter) signal(property string, emit func() error) {
	if err := emit(); err != nil {
		a.log.WithError(err).WithField("property", property).Debug("mpris signal failed")
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	quit func()
}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	if r.quit != nil {
		r.quit()
	}
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return r.quit != nil, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Reprise", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{
		"audio/mpeg", "audio/flac", "audio/wav", "audio/mp4",
		"video/mp4", "video/x-msvideo", "video/x-matroska",
	}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	service playback.Service
	log     logrus.FieldLogger
	fs      afero.Fs

	// open runs OpenMedia for OpenUri. It must not block the D-Bus handler,
	// since a resume prompt may wait for the user.
	open func(path string)
}

func newPlayerAdapter(service playback.Service, log logrus.FieldLogger) *playerAdapter {
	p := &playerAdapter{service: service, log: log, fs: afero.NewOsFs()}
	p.open = func(path string) {
		go p.openMedia(path)
	}
	return p
}

func (p *playerAdapter) openMedia(path string) {
	if err := p.service.OpenMedia(context.Background(), path); err != nil {
		p.log.WithField("path", path).WithError(err).Warn(errmsg.Format(errmsg.OpMediaOpen, err))
	}
}

func (p *playerAdapter) Next() error {
	return nil // No playlist
}

func (p *playerAdapter) Previous() error {
	return nil // No playlist
}

func (p *playerAdapter) Pause() error {
	return p.service.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.service.TogglePlayPause()
}

func (p *playerAdapter) Stop() error {
	return p.service.Stop()
}

func (p *playerAdapter) Play() error {
	return p.service.Play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.service.SeekRelative(time.Duration(offset) * time.Microsecond)
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	s := p.service.Session()
	// Requests for a track that is no longer current are ignored.
	if !s.HasMedia() || trackID != formatTrackID(s.MediaPath) {
		return nil
	}
	if position < 0 {
		return nil
	}
	return p.service.SeekAbsolute(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	path, err := pathFromURI(uri)
	if err != nil {
		return err
	}
	p.open(path)
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.service.Session().State {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	case playback.StateStopped:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.service.Session().Rate, nil
}

// SetRate follows MPRIS: a rate of 0 pauses.
func (p *playerAdapter) SetRate(rate float64) error {
	if rate <= 0 {
		return p.service.Pause()
	}
	return p.service.SetRate(rate)
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	d := p.service.Display()
	if d.MediaPath == "" {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(d.MediaPath)),
		Length:  types.Microseconds(d.Duration.Microseconds()),
		Title:   d.Title,
	}

	if art := media.Artwork(p.fs, d.MediaPath); art != "" {
		meta.ArtUrl = (&url.URL{Scheme: "file", Path: art}).String()
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return float64(p.service.Session().Volume) / 100, nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	percent := int(math.Round(min(max(volume, 0), 1) * 100))
	return p.service.SetVolume(percent)
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.Session().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return playback.Rates[0], nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return playback.Rates[len(playback.Rates)-1], nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.Session().HasMedia(), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.service.Session().HasMedia(), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.Session().HasMedia(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// pathFromURI accepts file:// URIs and plain paths.
func pathFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri: %w", err)
	}
	switch u.Scheme {
	case "":
		return uri, nil
	case "file":
		if u.Path == "" {
			return "", fmt.Errorf("empty file uri %q", uri)
		}
		return u.Path, nil
	default:
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

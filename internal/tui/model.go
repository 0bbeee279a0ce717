// Package tui is the terminal front-end of the player.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/keymap"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/timefmt"
)

const (
	volumeStep = 5
	minWidth   = 40
)

// Options configure a Model.
type Options struct {
	Log      logrus.FieldLogger
	Prompter *Prompter
	// Path is opened when the program starts.
	Path string
}

// Model is the bubbletea model of the player screen.
type Model struct {
	svc      playback.Service
	sub      *playback.Subscription
	prompter *Prompter
	log      logrus.FieldLogger

	keys       *keymap.Resolver
	promptKeys *keymap.Resolver
	help       help.Model
	showHelp   bool

	display playback.Display
	prompt  *PromptMsg

	notification *Notification
	nextNotifID  int64

	initialPath string
	width       int
	quitting    bool
	shutdownErr error
}

// New creates the player model over svc.
func New(svc playback.Service, opts Options) Model {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return Model{
		svc:         svc,
		sub:         svc.Subscribe(),
		prompter:    opts.Prompter,
		log:         log.WithField("component", "tui"),
		keys:        keymap.Player(),
		promptKeys:  keymap.Prompt(),
		help:        help.New(),
		display:     svc.Display(),
		initialPath: opts.Path,
		width:       80,
	}
}

// ShutdownErr returns the error of the shutdown run on quit, if any.
func (m Model) ShutdownErr() error {
	return m.shutdownErr
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{WatchServiceEvents(m.sub), WatchPrompts(m.prompter)}
	if m.initialPath != "" {
		cmds = append(cmds, OpenMediaCmd(m.svc, m.initialPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, minWidth)
		m.help.Width = m.width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case DisplayMsg:
		m.display = msg.Display
		return m, WatchServiceEvents(m.sub)

	case ResumedMsg:
		cmd := m.notify(fmt.Sprintf("Resumed %s from %s",
			filepath.Base(msg.Event.Path), timefmt.Format(msg.Event.Offset)), false)
		return m, tea.Batch(cmd, WatchServiceEvents(m.sub))

	case ServiceErrorMsg:
		cmd := m.notify(msg.Event.Message(), true)
		return m, tea.Batch(cmd, WatchServiceEvents(m.sub))

	case ServiceClosedMsg:
		return m, nil

	case PromptMsg:
		m.prompt = &msg
		return m, WatchPrompts(m.prompter)

	case OpenedMsg:
		cmd := m.handleOpened(msg)
		return m, cmd

	case NotificationClearMsg:
		if m.notification != nil && m.notification.ID == msg.ID {
			m.notification = nil
		}
		return m, nil

	case QuitMsg:
		return m.quit()

	case shutdownDoneMsg:
		m.shutdownErr = msg.Err
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn(errmsg.Format(errmsg.OpShutdown, msg.Err))
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleOpened(msg OpenedMsg) tea.Cmd {
	switch {
	case msg.Err == nil:
		return nil
	case errors.Is(msg.Err, playback.ErrSuperseded), errors.Is(msg.Err, playback.ErrClosed):
		return nil
	}
	// Load failures are reported through the subscription.
	var loadErr *playback.MediaLoadError
	if errors.As(msg.Err, &loadErr) {
		return nil
	}
	return m.notify(errmsg.FormatWith(errmsg.OpMediaOpen, filepath.Base(msg.Path), msg.Err), true)
}

func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.nextNotifID++
	m.notification = &Notification{ID: m.nextNotifID, Message: text, Error: isErr}
	return NotificationClearCmd(m.nextNotifID)
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if m.prompt != nil {
		return m.handlePromptKey(key)
	}

	action := m.keys.Resolve(key)
	if action == keymap.ActionQuit {
		return m.quit()
	}
	if action == keymap.ActionHelp {
		m.showHelp = !m.showHelp
		return m, nil
	}
	cmd := m.dispatch(action)
	return m, cmd
}

func (m Model) handlePromptKey(key string) (tea.Model, tea.Cmd) {
	switch m.promptKeys.Resolve(key) { //nolint:exhaustive // prompt actions only
	case keymap.ActionConfirmYes:
		m.answer(true)
	case keymap.ActionConfirmNo:
		m.answer(false)
	default:
		if m.keys.Resolve(key) == keymap.ActionQuit {
			m.answer(false)
			return m.quit()
		}
	}
	return m, nil
}

func (m *Model) answer(yes bool) {
	if m.prompt == nil {
		return
	}
	m.prompt.reply <- yes
	m.prompt = nil
}

// dispatch runs a transport action. Controller errors that are not already
// broadcast are shown in the status line.
func (m *Model) dispatch(action keymap.Action) tea.Cmd {
	var err error
	switch action { //nolint:exhaustive // global and prompt actions are handled by the caller
	case keymap.ActionPlayPause:
		err = m.svc.TogglePlayPause()
	case keymap.ActionStop:
		err = m.svc.Stop()
	case keymap.ActionSeekBack:
		err = m.svc.SeekBackward()
	case keymap.ActionSeekForward:
		err = m.svc.SeekForward()
	case keymap.ActionVolumeUp:
		_, err = m.svc.AdjustVolume(volumeStep)
	case keymap.ActionVolumeDown:
		_, err = m.svc.AdjustVolume(-volumeStep)
	case keymap.ActionSpeedUp:
		_, err = m.svc.CycleRate(1)
	case keymap.ActionSpeedDown:
		_, err = m.svc.CycleRate(-1)
	case keymap.ActionToggleTime:
		m.svc.ToggleTimeDisplay()
	default:
		return nil
	}

	if err != nil {
		m.log.WithField("action", action).WithError(err).Debug("command failed")
	}
	// Commands update the snapshot synchronously; do not wait for the event.
	m.display = m.svc.Display()
	return nil
}

// quit declines any open prompt, runs Shutdown and exits once it is done.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	m.quitting = true
	m.answer(false)
	if m.prompter != nil {
		m.prompter.Close()
	}
	return m, ShutdownCmd(m.svc)
}

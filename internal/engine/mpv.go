package engine

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	mpvLoadTimeout    = 10 * time.Second
	mpvQuitTimeout    = 3 * time.Second
)

var (
	// ErrClosed is returned by commands issued after Close.
	ErrClosed = errors.New("engine: closed")

	errMPVExited = errors.New("mpv exited")
)

// observed lists the mpv properties turned into events.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"idle-active",
	"eof-reached",
	"track-list",
}

// MPV drives an mpv child process over its JSON IPC socket.
//
// The process is started lazily on the first Load and kept idle between
// files. Commands use a fresh connection each; a persistent connection
// receives property-change notifications.
type MPV struct {
	bin string
	log logrus.FieldLogger

	procMu     sync.Mutex // guards process lifecycle
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	evConn     net.Conn
	closed     bool

	reqID atomic.Int64

	mu       sync.Mutex // guards playback fields
	state    State
	loaded   string
	position time.Duration
	duration time.Duration
	hasAudio bool
	hasVideo bool
	stopped  bool // pause changes are not reported as Playing/Paused
	eof      bool
	pending  chan error

	ev emitter
}

// NewMPV creates an engine that runs the mpv binary at bin.
func NewMPV(bin string, log logrus.FieldLogger) *MPV {
	if bin == "" {
		bin = "mpv"
	}
	return &MPV{
		bin:     bin,
		log:     log.WithField("engine", "mpv"),
		state:   Stopped,
		stopped: true,
		ev:      newEmitter(),
	}
}

func (m *MPV) ensureStarted() error {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.cmd != nil {
		select {
		case <-m.exited:
			m.log.Warn("mpv exited, restarting")
			m.cleanupLocked()
		default:
			return nil
		}
	}

	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("reprise-%x.sock", randomBytes))
	}

	args := []string{
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--pause=yes",
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + m.socketPath,
	}

	cmd := exec.Command(m.bin, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	m.cmd = cmd
	m.exited = exited

	if err := waitForSocket(m.socketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			m.log.Warn("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		m.cmd = nil
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		_ = killProcess(cmd)
		m.cmd = nil
		return fmt.Errorf("event connection: %w", err)
	}
	for i, name := range observed {
		if err := writeCommand(conn, m.reqID.Add(1), []any{"observe_property", i + 1, name}); err != nil {
			conn.Close()
			_ = killProcess(cmd)
			m.cmd = nil
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}
	m.evConn = conn
	go m.readEvents(conn)

	m.log.WithField("socket", m.socketPath).Debug("mpv started")
	return nil
}

// waitForSocket polls until the IPC socket accepts connections.
func waitForSocket(socketPath string, exited <-chan struct{}) error {
	for range socketWaitRetries {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return errMPVExited
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// cleanupLocked forgets a dead process. Caller holds procMu.
func (m *MPV) cleanupLocked() {
	if m.evConn != nil {
		m.evConn.Close()
		m.evConn = nil
	}
	m.cmd = nil
	_ = os.Remove(m.socketPath)
}

func (m *MPV) command(args ...any) (any, error) {
	m.procMu.Lock()
	socket := m.socketPath
	running := m.cmd != nil
	m.procMu.Unlock()

	if !running {
		return nil, ErrNoMedia
	}
	return doSendCommand(socket, m.reqID.Add(1), args)
}

func (m *MPV) setProperty(name string, value any) error {
	_, err := m.command("set_property", name, value)
	return err
}

func (m *MPV) Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if err := m.ensureStarted(); err != nil {
		return err
	}

	pending := make(chan error, 1)
	m.mu.Lock()
	m.pending = pending
	m.loaded = ""
	m.state = Stopped
	m.stopped = true
	m.eof = false
	m.position = 0
	m.duration = 0
	m.hasAudio = false
	m.hasVideo = false
	m.mu.Unlock()

	if err := m.setProperty("pause", true); err != nil {
		return fmt.Errorf("pause before load: %w", err)
	}
	if _, err := m.command("loadfile", path, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}

	m.procMu.Lock()
	exited := m.exited
	m.procMu.Unlock()

	var err error
	select {
	case err = <-pending:
	case <-exited:
		err = errMPVExited
	case <-time.After(mpvLoadTimeout):
		err = fmt.Errorf("timed out after %s", mpvLoadTimeout)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	if err != nil {
		return err
	}
	m.loaded = path
	return nil
}

func (m *MPV) Unload() error {
	m.procMu.Lock()
	running := m.cmd != nil
	m.procMu.Unlock()
	if !running {
		return nil
	}

	_, err := m.command("stop")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = ""
	m.stopped = true
	m.position = 0
	m.duration = 0
	m.setStateLocked(Stopped)
	return err
}

func (m *MPV) Play() error {
	m.mu.Lock()
	if m.loaded == "" {
		m.mu.Unlock()
		return ErrNoMedia
	}
	rewind := m.eof
	m.mu.Unlock()

	if rewind {
		if _, err := m.command("seek", 0, "absolute"); err != nil {
			return err
		}
	}
	if err := m.setProperty("pause", false); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = false
	m.eof = false
	m.setStateLocked(Playing)
	return nil
}

func (m *MPV) Pause() error {
	if err := m.setProperty("pause", true); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Playing {
		m.setStateLocked(Paused)
	}
	return nil
}

// Stop pauses and rewinds, keeping the file loaded.
func (m *MPV) Stop() error {
	m.mu.Lock()
	if m.loaded == "" {
		m.setStateLocked(Stopped)
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.mu.Unlock()

	if err := m.setProperty("pause", true); err != nil {
		return err
	}
	if _, err := m.command("seek", 0, "absolute"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = 0
	m.setStateLocked(Stopped)
	m.ev.emit(Event{Kind: PositionChanged, Position: 0})
	return nil
}

func (m *MPV) Seek(position time.Duration) error {
	position = max(position, 0)
	if _, err := m.command("seek", position.Seconds(), "absolute"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = position
	m.eof = false
	return nil
}

func (m *MPV) SetRate(rate float64) error {
	return m.setProperty("speed", rate)
}

func (m *MPV) SetVolume(percent int) error {
	return m.setProperty("volume", percent)
}

func (m *MPV) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *MPV) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MPV) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *MPV) HasAudio() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasAudio
}

func (m *MPV) HasVideo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasVideo
}

func (m *MPV) Events() <-chan Event { return m.ev.events() }

// Close quits mpv, killing it if it does not exit in time.
func (m *MPV) Close() error {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	if m.cmd == nil {
		return nil
	}

	_, _ = doSendCommand(m.socketPath, m.reqID.Add(1), []any{"quit"})

	select {
	case <-m.exited:
	case <-time.After(mpvQuitTimeout):
		m.log.Warn("mpv did not quit, killing it")
		_ = killProcess(m.cmd)
	}

	m.cleanupLocked()
	return nil
}

// readEvents dispatches every event line from the persistent connection.
func (m *MPV) readEvents(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), ipcMaxLine)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			m.log.WithError(err).Debug("skipping unparseable mpv line")
			continue
		}
		if msg.Event == "" {
			continue
		}
		m.handleEvent(msg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		select {
		case m.pending <- errMPVExited:
		default:
		}
	}
	m.loaded = ""
	m.stopped = true
	m.setStateLocked(Stopped)
}

func (m *MPV) handleEvent(msg ipcMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch msg.Event {
	case "property-change":
		m.handlePropertyLocked(msg.Name, msg.Data)
	case "file-loaded":
		m.resolveLoadLocked(nil)
	case "end-file":
		switch msg.Reason {
		case "error":
			cause := msg.FileError
			if cause == "" {
				cause = "unknown error"
			}
			m.resolveLoadLocked(fmt.Errorf("mpv: %s", cause))
		case "eof":
			m.finishLocked()
		}
	}
}

func (m *MPV) handlePropertyLocked(name string, data any) {
	switch name {
	case "time-pos":
		pos, ok := seconds(data)
		if !ok || pos == m.position {
			return
		}
		m.position = pos
		m.ev.emit(Event{Kind: PositionChanged, Position: pos})
	case "duration":
		dur, ok := seconds(data)
		if !ok || dur == m.duration {
			return
		}
		m.duration = dur
		m.ev.emit(Event{Kind: DurationChanged, Duration: dur})
	case "pause":
		paused, ok := data.(bool)
		if !ok || m.loaded == "" || m.stopped {
			return
		}
		if paused {
			m.setStateLocked(Paused)
		} else {
			m.setStateLocked(Playing)
		}
	case "eof-reached":
		if reached, _ := data.(bool); reached && m.loaded != "" {
			m.finishLocked()
		}
	case "idle-active":
		if idle, _ := data.(bool); idle {
			m.stopped = true
			m.setStateLocked(Stopped)
		}
	case "track-list":
		hasAudio, hasVideo := tracksFromList(data)
		if hasAudio == m.hasAudio && hasVideo == m.hasVideo {
			return
		}
		m.hasAudio = hasAudio
		m.hasVideo = hasVideo
		m.ev.emit(Event{Kind: TracksChanged, HasAudio: hasAudio, HasVideo: hasVideo})
	}
}

func (m *MPV) resolveLoadLocked(err error) {
	if m.pending == nil {
		return
	}
	select {
	case m.pending <- err:
	default:
	}
}

func (m *MPV) finishLocked() {
	if m.eof {
		return
	}
	m.eof = true
	m.stopped = true
	m.setStateLocked(Stopped)
	m.ev.emit(Event{Kind: EndOfFile, Position: m.position})
}

func (m *MPV) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	m.ev.emit(Event{Kind: StateChanged, State: s})
}

var _ Interface = (*MPV)(nil)

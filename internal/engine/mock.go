package engine

import (
	"fmt"
	"sync"
	"time"
)

// Mock is a test double for an engine.
// It never emits events on its own; tests push them with Emit.
type Mock struct {
	mu sync.Mutex

	state    State
	loaded   string
	position time.Duration
	duration time.Duration
	hasAudio bool
	hasVideo bool
	rate     float64
	volume   int

	loadErr   error
	playErr   error
	pauseErr  error
	stopErr   error
	unloadErr error
	stopPanic any
	posPanic  any
	loadGate  <-chan struct{}

	calls     []string
	seekCalls []time.Duration

	ev emitter
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{
		state: Stopped,
		rate:  1,
		ev:    newEmitter(),
	}
}

func (m *Mock) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *Mock) Load(path string) error {
	m.mu.Lock()
	m.record("load:" + path)
	gate := m.loadGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = path
	m.state = Stopped
	m.position = 0
	return nil
}

func (m *Mock) Unload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("unload")
	if m.unloadErr != nil {
		return m.unloadErr
	}
	m.loaded = ""
	m.state = Stopped
	m.position = 0
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("play")
	if m.playErr != nil {
		return m.playErr
	}
	if m.loaded == "" {
		return ErrNoMedia
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("pause")
	if m.pauseErr != nil {
		return m.pauseErr
	}
	if m.state == Playing {
		m.state = Paused
	}
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("stop")
	if m.stopPanic != nil {
		panic(m.stopPanic)
	}
	if m.stopErr != nil {
		return m.stopErr
	}
	m.state = Stopped
	m.position = 0
	return nil
}

func (m *Mock) Seek(position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("seek:%d", position.Milliseconds()))
	m.seekCalls = append(m.seekCalls, position)
	m.position = max(position, 0)
	return nil
}

func (m *Mock) SetRate(rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("rate:%g", rate))
	m.rate = rate
	return nil
}

func (m *Mock) SetVolume(percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("volume:%d", percent))
	m.volume = percent
	return nil
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.posPanic != nil {
		panic(m.posPanic)
	}
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) HasAudio() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasAudio
}

func (m *Mock) HasVideo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasVideo
}

func (m *Mock) Events() <-chan Event { return m.ev.events() }

func (m *Mock) Close() error { return nil }

// Test helpers

func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetTracks(hasAudio, hasVideo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasAudio = hasAudio
	m.hasVideo = hasVideo
}

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetStopError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopErr = err
}

// SetStopPanic makes Stop panic with v, simulating a crashing backend.
func (m *Mock) SetStopPanic(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopPanic = v
}

// SetLoadGate makes Load block until gate is closed or receives.
func (m *Mock) SetLoadGate(gate <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadGate = gate
}

// SetPositionPanic makes Position panic with v.
func (m *Mock) SetPositionPanic(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posPanic = v
}

func (m *Mock) SetUnloadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadErr = err
}

// Emit pushes an event as if the backend produced it.
func (m *Mock) Emit(ev Event) { m.ev.emit(ev) }

// Calls returns every command received, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CountCalls returns how many times call was received.
func (m *Mock) CountCalls(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) Loaded() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// Package engine defines the contract of the media playback engine and its
// backends. An engine decodes and renders media; the rest of the application
// only sends it commands and listens to its telemetry events.
package engine

import (
	"errors"
	"time"
)

// ErrNoMedia is returned by commands that need loaded media.
var ErrNoMedia = errors.New("engine: no media loaded")

// Interface is the playback engine contract.
//
// Implementations never call back into their caller: telemetry is delivered
// on the Events channel, which the caller drains on its own goroutine.
type Interface interface {
	Load(path string) error
	Unload() error
	Play() error
	Pause() error
	Stop() error
	Seek(position time.Duration) error
	SetRate(rate float64) error
	SetVolume(percent int) error

	State() State
	Position() time.Duration
	Duration() time.Duration
	HasAudio() bool
	HasVideo() bool

	Events() <-chan Event
	Close() error
}

// EventKind identifies what changed in an Event.
type EventKind int

const (
	StateChanged EventKind = iota
	PositionChanged
	DurationChanged
	TracksChanged
	EndOfFile
)

// String returns the kind name for logs.
func (k EventKind) String() string {
	switch k {
	case StateChanged:
		return "state"
	case PositionChanged:
		return "position"
	case DurationChanged:
		return "duration"
	case TracksChanged:
		return "tracks"
	case EndOfFile:
		return "eof"
	default:
		return "unknown"
	}
}

// Event is a telemetry notification from the engine.
// Only the fields relevant to Kind are meaningful.
type Event struct {
	Kind     EventKind
	State    State
	Position time.Duration
	Duration time.Duration
	HasAudio bool
	HasVideo bool
}

const eventBufferSize = 64

// emitter delivers events without ever blocking the engine.
type emitter struct {
	ch chan Event
}

func newEmitter() emitter {
	return emitter{ch: make(chan Event, eventBufferSize)}
}

// emit sends e, dropping it if the consumer fell behind.
func (e emitter) emit(ev Event) {
	select {
	case e.ch <- ev:
	default:
	}
}

func (e emitter) events() <-chan Event {
	return e.ch
}

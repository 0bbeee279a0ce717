package engine

import (
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newTestMPV(t *testing.T) *MPV {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	return NewMPV("mpv", log)
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestMPV_PropertyChangesBecomeEvents(t *testing.T) {
	m := newTestMPV(t)
	m.loaded = "/media/a.mp4"
	m.stopped = false

	m.handleEvent(ipcMessage{Event: "property-change", Name: "duration", Data: 100.0})
	m.handleEvent(ipcMessage{Event: "property-change", Name: "time-pos", Data: 30.0})
	m.handleEvent(ipcMessage{Event: "property-change", Name: "pause", Data: false})
	m.handleEvent(ipcMessage{Event: "property-change", Name: "track-list", Data: []any{
		map[string]any{"type": "video"},
		map[string]any{"type": "audio"},
	}})

	events := drain(m.Events())
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4: %+v", len(events), events)
	}
	if events[0].Kind != DurationChanged || events[0].Duration != 100*time.Second {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[1].Kind != PositionChanged || events[1].Position != 30*time.Second {
		t.Errorf("event[1] = %+v", events[1])
	}
	if events[2].Kind != StateChanged || events[2].State != Playing {
		t.Errorf("event[2] = %+v", events[2])
	}
	if events[3].Kind != TracksChanged || !events[3].HasAudio || !events[3].HasVideo {
		t.Errorf("event[3] = %+v", events[3])
	}

	if m.Position() != 30*time.Second || m.Duration() != 100*time.Second {
		t.Errorf("position/duration = %v/%v", m.Position(), m.Duration())
	}
	if !m.HasAudio() || !m.HasVideo() {
		t.Error("track flags not recorded")
	}
}

func TestMPV_DuplicatePropertiesAreIdempotent(t *testing.T) {
	m := newTestMPV(t)
	m.loaded = "/media/a.mp4"

	m.handleEvent(ipcMessage{Event: "property-change", Name: "time-pos", Data: 5.0})
	m.handleEvent(ipcMessage{Event: "property-change", Name: "time-pos", Data: 5.0})

	if got := len(drain(m.Events())); got != 1 {
		t.Errorf("got %d events, want 1", got)
	}
}

func TestMPV_PauseIgnoredWhileStopped(t *testing.T) {
	m := newTestMPV(t)
	m.loaded = "/media/a.mp4"
	m.stopped = true

	m.handleEvent(ipcMessage{Event: "property-change", Name: "pause", Data: false})

	if m.State() != Stopped {
		t.Errorf("State() = %v, want Stopped", m.State())
	}
	if got := drain(m.Events()); len(got) != 0 {
		t.Errorf("unexpected events %+v", got)
	}
}

func TestMPV_EndOfFile(t *testing.T) {
	m := newTestMPV(t)
	m.loaded = "/media/a.mp4"
	m.stopped = false
	m.state = Playing

	m.handleEvent(ipcMessage{Event: "property-change", Name: "eof-reached", Data: true})
	m.handleEvent(ipcMessage{Event: "end-file", Reason: "eof"})

	events := drain(m.Events())
	var eofs, stops int
	for _, ev := range events {
		switch {
		case ev.Kind == EndOfFile:
			eofs++
		case ev.Kind == StateChanged && ev.State == Stopped:
			stops++
		}
	}
	if eofs != 1 || stops != 1 {
		t.Errorf("eof events = %d, stop events = %d; want 1 each", eofs, stops)
	}
}

func TestMPV_LoadResolution(t *testing.T) {
	tests := []struct {
		name    string
		msg     ipcMessage
		wantErr bool
	}{
		{"file loaded", ipcMessage{Event: "file-loaded"}, false},
		{"load error", ipcMessage{Event: "end-file", Reason: "error", FileError: "unrecognized file format"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMPV(t)
			pending := make(chan error, 1)
			m.pending = pending

			m.handleEvent(tt.msg)

			select {
			case err := <-pending:
				if (err != nil) != tt.wantErr {
					t.Errorf("pending error = %v, wantErr %v", err, tt.wantErr)
				}
			default:
				t.Fatal("pending load was not resolved")
			}
		})
	}
}

func TestMPV_ReadEventsFromConnection(t *testing.T) {
	m := newTestMPV(t)
	m.loaded = "/media/a.mp4"
	pending := make(chan error, 1)
	m.pending = pending

	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		m.readEvents(client)
		close(done)
	}()

	lines := []string{
		`{"request_id":1,"error":"success"}`,
		`{"event":"file-loaded"}`,
		`{"event":"property-change","id":2,"name":"duration","data":42.0}`,
	}
	for _, l := range lines {
		if _, err := server.Write([]byte(l + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case err := <-pending:
		if err != nil {
			t.Errorf("pending error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("file-loaded never resolved the pending load")
	}

	server.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readEvents did not return after the connection closed")
	}

	if m.Duration() != 42*time.Second {
		t.Errorf("Duration() = %v, want 42s", m.Duration())
	}
	if m.State() != Stopped {
		t.Errorf("State() = %v, want Stopped after disconnect", m.State())
	}
}

func TestMPV_CommandsWithoutProcess(t *testing.T) {
	m := newTestMPV(t)

	if err := m.Play(); err != ErrNoMedia {
		t.Errorf("Play() error = %v, want ErrNoMedia", err)
	}
	if err := m.SetRate(1.5); err != ErrNoMedia {
		t.Errorf("SetRate() error = %v, want ErrNoMedia", err)
	}
	if err := m.Unload(); err != nil {
		t.Errorf("Unload() error = %v, want nil", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := m.Load("/definitely/not/here.mp4"); err == nil {
		t.Error("Load() of a missing file error = nil")
	}
}

func TestNewMPV_DefaultsBinary(t *testing.T) {
	m := NewMPV("", logrus.New())
	if m.bin != "mpv" {
		t.Errorf("bin = %q, want mpv", m.bin)
	}
}

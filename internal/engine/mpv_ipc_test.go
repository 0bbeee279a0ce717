package engine

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"
)

// fakeMPV serves one reply per connection. reply receives the decoded
// request and returns the raw lines to write back.
func fakeMPV(t *testing.T, reply func(req ipcRequest) []string) string {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "mpv.sock")
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				line, err := bufio.NewReader(conn).ReadBytes('\n')
				if err != nil {
					return
				}
				var req ipcRequest
				if err := json.Unmarshal(line, &req); err != nil {
					return
				}
				for _, out := range reply(req) {
					if _, err := conn.Write([]byte(out + "\n")); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return socket
}

func TestDoSendCommand_ReturnsData(t *testing.T) {
	socket := fakeMPV(t, func(req ipcRequest) []string {
		return []string{fmt.Sprintf(`{"data":12.5,"error":"success","request_id":%d}`, req.RequestID)}
	})

	data, err := doSendCommand(socket, 7, []any{"get_property", "time-pos"})
	if err != nil {
		t.Fatalf("doSendCommand() error = %v", err)
	}
	if data != 12.5 {
		t.Errorf("data = %v, want 12.5", data)
	}
}

func TestDoSendCommand_SkipsEventsAndForeignReplies(t *testing.T) {
	socket := fakeMPV(t, func(req ipcRequest) []string {
		return []string{
			`{"event":"property-change","id":1,"name":"time-pos","data":3.0}`,
			`{"data":"stale","error":"success","request_id":999}`,
			`not json`,
			fmt.Sprintf(`{"data":"mine","error":"success","request_id":%d}`, req.RequestID),
		}
	})

	data, err := doSendCommand(socket, 3, []any{"get_property", "path"})
	if err != nil {
		t.Fatalf("doSendCommand() error = %v", err)
	}
	if data != "mine" {
		t.Errorf("data = %v, want mine", data)
	}
}

func TestDoSendCommand_SendsCommandArray(t *testing.T) {
	got := make(chan ipcRequest, 1)
	socket := fakeMPV(t, func(req ipcRequest) []string {
		got <- req
		return []string{fmt.Sprintf(`{"error":"success","request_id":%d}`, req.RequestID)}
	})

	if _, err := doSendCommand(socket, 11, []any{"loadfile", "/media/a.mp4", "replace"}); err != nil {
		t.Fatalf("doSendCommand() error = %v", err)
	}

	select {
	case req := <-got:
		if req.RequestID != 11 {
			t.Errorf("request_id = %d, want 11", req.RequestID)
		}
		if len(req.Command) != 3 || req.Command[0] != "loadfile" || req.Command[1] != "/media/a.mp4" {
			t.Errorf("command = %v", req.Command)
		}
	case <-time.After(time.Second):
		t.Fatal("server never received the request")
	}
}

func TestDoSendCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		errText string
		wantIs  error
	}{
		{"property unavailable", "property unavailable", errPropertyUnavailable},
		{"other error", "invalid parameter", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			socket := fakeMPV(t, func(req ipcRequest) []string {
				return []string{fmt.Sprintf(`{"error":%q,"request_id":%d}`, tt.errText, req.RequestID)}
			})

			_, err := doSendCommand(socket, 1, []any{"get_property", "duration"})
			if err == nil {
				t.Fatal("doSendCommand() error = nil, want error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestDoSendCommand_ConnectionClosedBeforeReply(t *testing.T) {
	socket := fakeMPV(t, func(ipcRequest) []string { return nil })

	if _, err := doSendCommand(socket, 1, []any{"quit"}); err == nil {
		t.Error("doSendCommand() error = nil, want error")
	}
}

func TestDoSendCommand_NoSocket(t *testing.T) {
	_, err := doSendCommand(filepath.Join(t.TempDir(), "missing.sock"), 1, []any{"quit"})
	if err == nil {
		t.Error("doSendCommand() error = nil, want connect error")
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   time.Duration
		wantOK bool
	}{
		{"whole seconds", 5.0, 5 * time.Second, true},
		{"fraction", 1.25, 1250 * time.Millisecond, true},
		{"nil", nil, 0, false},
		{"negative", -1.0, 0, false},
		{"wrong type", "5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := seconds(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("seconds(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTracksFromList(t *testing.T) {
	decode := func(s string) any {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return v
	}

	tests := []struct {
		name      string
		list      string
		wantAudio bool
		wantVideo bool
	}{
		{"empty", `[]`, false, false},
		{"audio only", `[{"type":"audio","id":1}]`, true, false},
		{"video and audio", `[{"type":"video","id":1},{"type":"audio","id":1}]`, true, true},
		{"cover art is not video", `[{"type":"audio","id":1},{"type":"video","id":1,"albumart":true}]`, true, false},
		{"still image is not video", `[{"type":"video","id":1,"image":true}]`, false, false},
		{"subtitles ignored", `[{"type":"sub","id":1}]`, false, false},
		{"not a list", `{"type":"audio"}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audio, video := tracksFromList(decode(tt.list))
			if audio != tt.wantAudio || video != tt.wantVideo {
				t.Errorf("tracksFromList() = %v, %v; want %v, %v", audio, video, tt.wantAudio, tt.wantVideo)
			}
		})
	}
}

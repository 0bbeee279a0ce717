package engine

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// ipcRequest is the JSON structure sent to mpv's IPC socket.
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line received from mpv: a command reply or an event.
type ipcMessage struct {
	Event     string `json:"event"`
	Name      string `json:"name"`
	Data      any    `json:"data"`
	Error     string `json:"error"`
	RequestID *int64 `json:"request_id"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

const (
	ipcReadDeadline = 2 * time.Second
	ipcMaxLine      = 1 << 20
)

var errPropertyUnavailable = errors.New("mpv: property unavailable")

// doSendCommand performs a single request/reply exchange on a fresh
// connection. Events interleaved on the socket and replies carrying another
// request id are skipped.
func doSendCommand(socketPath string, id int64, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcRequest{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(ipcReadDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), ipcMaxLine)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event != "" || msg.RequestID == nil || *msg.RequestID != id {
			continue
		}
		return replyData(msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, errors.New("read: connection closed before reply")
}

func replyData(msg ipcMessage) (any, error) {
	switch msg.Error {
	case "", "success":
		return msg.Data, nil
	case "property unavailable":
		return nil, errPropertyUnavailable
	default:
		return nil, fmt.Errorf("mpv error: %s", msg.Error)
	}
}

// writeCommand sends a command without waiting for its reply. Used on the
// event connection, whose reader discards replies.
func writeCommand(conn net.Conn, id int64, command []any) error {
	payload, err := json.Marshal(ipcRequest{Command: command, RequestID: id})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// seconds converts an mpv time value to a duration.
func seconds(v any) (time.Duration, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return time.Duration(f * float64(time.Second)), true
}

// tracksFromList reports audio and video availability from mpv's track-list.
// Cover art is exposed by mpv as a video track and does not count as video.
func tracksFromList(v any) (hasAudio, hasVideo bool) {
	list, ok := v.([]any)
	if !ok {
		return false, false
	}
	for _, item := range list {
		track, ok := item.(map[string]any)
		if !ok {
			continue
		}
		switch track["type"] {
		case "audio":
			hasAudio = true
		case "video":
			if art, _ := track["albumart"].(bool); art {
				continue
			}
			if img, _ := track["image"].(bool); img {
				continue
			}
			hasVideo = true
		}
	}
	return hasAudio, hasVideo
}

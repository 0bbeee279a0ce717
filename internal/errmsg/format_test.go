//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpMediaOpen,
			err:      nil,
			expected: "",
		},
		{
			name:     "media operation",
			op:       OpMediaOpen,
			err:      errors.New("unrecognized file format"),
			expected: "Failed to open media: unrecognized file format",
		},
		{
			name:     "position save",
			op:       OpPositionSave,
			err:      errors.New("read-only file system"),
			expected: "Failed to save playback position: read-only file system",
		},
		{
			name:     "transport operation",
			op:       OpPlaybackStop,
			err:      errors.New("mpv exited"),
			expected: "Failed to stop playback: mpv exited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpMediaOpen,
			context:  "movie.mkv",
			err:      nil,
			expected: "",
		},
		{
			name:     "with context",
			op:       OpMediaOpen,
			context:  "movie.mkv",
			err:      errors.New("no such file"),
			expected: "Failed to open media 'movie.mkv': no such file",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpSeek,
			context:  "",
			err:      errors.New("no media loaded"),
			expected: "Failed to seek: no media loaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

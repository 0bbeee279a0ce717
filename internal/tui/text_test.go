package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Chapter One", "Chapter One"},
		{"unicode untouched", "Café – 東京", "Café – 東京"},
		{"tab kept", "a\tb", "a\tb"},
		{"newline dropped", "line\nbreak", "linebreak"},
		{"escape dropped", "\x1b[31mred", "[31mred"},
		{"invalid utf8 dropped", "ab\xffcd", "abcd"},
		{"c1 control dropped", "a\u0085b", "ab"},
		{"nbsp becomes space", "a\u00a0b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize(tt.in); got != tt.want {
				t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a longe…"},
		{"東京タワー", 5, "東京…"},
		{"title\n", 10, "title"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRow(t *testing.T) {
	got := row("left", "right", 20)
	if lipgloss.Width(got) != 20 {
		t.Errorf("row width = %d, want 20", lipgloss.Width(got))
	}

	// Overflow keeps a single space between the parts.
	if got := row("left", "right", 5); got != "left right" {
		t.Errorf("row overflow = %q", got)
	}
}

package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// sanitize drops control characters and invalid UTF-8 from text read out of
// media tags, and turns non-breaking spaces into plain ones. Tabs are kept.
func sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return r
		case r == '\u00a0':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

func needsSanitize(s string) bool {
	for i := range len(s) {
		b := s[i]
		if b < 0x20 && b != '\t' || b == 0x7f || b >= 0x80 {
			return true
		}
	}
	return false
}

// truncate shortens s to width cells with a single-cell ellipsis.
func truncate(s string, width int) string {
	return runewidth.Truncate(sanitize(s), max(width, 1), "…")
}

// row places left and right at the two ends of a width-cell line.
func row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

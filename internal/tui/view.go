package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/reprise/internal/keymap"
	"github.com/llehouerou/reprise/internal/playback"
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	stopSymbol  = "■"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	inner := max(m.width-6, minWidth-6) // border and padding
	lines := []string{
		renderTitle(m.display, inner),
		renderProgress(m.display, inner),
		renderStatus(m.display, inner),
	}
	out := frameStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))

	if m.prompt != nil {
		out += "\n" + promptStyle.Render(promptText(m.prompt.Request))
	} else if m.notification != nil {
		style := noticeStyle
		if m.notification.Error {
			style = errorStyle
		}
		out += "\n" + style.Render(truncate(m.notification.Message, m.width))
	}

	out += "\n" + m.helpView()
	return out
}

func (m Model) helpView() string {
	if m.prompt != nil {
		return m.help.ShortHelpView(keymap.HelpBindings(keymap.ContextPrompt))
	}
	if m.showHelp {
		return m.help.FullHelpView([][]key.Binding{
			keymap.HelpBindings(keymap.ContextPlayback),
			keymap.HelpBindings(keymap.ContextGlobal),
		})
	}
	return m.help.ShortHelpView(keymap.HelpBindings(keymap.ContextGlobal))
}

func promptText(req playback.ResumeRequest) string {
	return fmt.Sprintf("Resume %s from %s? [y/n]", filepath.Base(req.Path), req.OffsetText)
}

func renderTitle(d playback.Display, width int) string {
	if d.MediaPath == "" {
		return metaStyle.Render("No media")
	}
	title := d.Title
	if title == "" {
		title = filepath.Base(d.MediaPath)
	}
	kind := "video"
	if d.AudioOnly {
		kind = "audio"
	}
	tag := "[" + kind + "]"
	title = truncate(title, width-runewidth.StringWidth(tag)-1)
	return row(titleStyle.Render(title), metaStyle.Render(tag), width)
}

// renderProgress draws "▶ ━━━━───── 00:01:23 / 00:04:56".
func renderProgress(d playback.Display, width int) string {
	status := stopSymbol
	switch d.State { //nolint:exhaustive // stopped keeps the default symbol
	case playback.StatePlaying:
		status = playSymbol
	case playback.StatePaused:
		status = pauseSymbol
	}

	times := d.CurrentText + " / " + d.TotalText
	barWidth := max(width-lipgloss.Width(status)-lipgloss.Width(times)-2, 5)

	var ratio float64
	if d.ProgressMax > 0 {
		ratio = float64(d.ProgressValue) / float64(d.ProgressMax)
	}
	filled := min(int(float64(barWidth)*ratio), barWidth)

	return status + " " +
		barFilledStyle.Render(strings.Repeat("━", filled)) +
		barEmptyStyle.Render(strings.Repeat("─", barWidth-filled)) + " " +
		timeStyle.Render(times)
}

func renderStatus(d playback.Display, width int) string {
	hint := ""
	if d.ShowRemaining {
		hint = "remaining"
	}
	return row(metaStyle.Render(fmt.Sprintf("vol %s   speed %gx", d.VolumeText, d.Rate)),
		metaStyle.Render(hint), width)
}

package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/samber/lo"
)

// Binding describes a single key binding. Keys use bubbletea's
// KeyMsg.String() spelling, so space is " ".
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string
}

// All contains every key binding.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", ContextGlobal},
	{ActionHelp, []string{"?"}, "Show help", ContextGlobal},

	// Playback
	{ActionPlayPause, []string{" ", "p"}, "Play/pause", ContextPlayback},
	{ActionStop, []string{"s"}, "Stop", ContextPlayback},
	{ActionSeekBack, []string{"left", "h"}, "Seek back", ContextPlayback},
	{ActionSeekForward, []string{"right", "l"}, "Seek forward", ContextPlayback},
	{ActionVolumeUp, []string{"up", "+", "="}, "Volume up", ContextPlayback},
	{ActionVolumeDown, []string{"down", "-"}, "Volume down", ContextPlayback},
	{ActionSpeedUp, []string{"]"}, "Faster", ContextPlayback},
	{ActionSpeedDown, []string{"["}, "Slower", ContextPlayback},
	{ActionToggleTime, []string{"t"}, "Total/remaining time", ContextPlayback},

	// Resume prompt
	{ActionConfirmYes, []string{"y", "enter"}, "Resume", ContextPrompt},
	{ActionConfirmNo, []string{"n", "esc"}, "Start over", ContextPrompt},
}

// ByContext returns key bindings filtered by context, in declaration order.
func ByContext(contexts ...string) []Binding {
	return lo.Filter(All, func(b Binding, _ int) bool {
		return lo.Contains(contexts, b.Context)
	})
}

// KeyBinding converts b into a bubbles binding for the help view.
func (b Binding) KeyBinding() key.Binding {
	return key.NewBinding(
		key.WithKeys(b.Keys...),
		key.WithHelp(helpKey(b.Keys[0]), b.Description),
	)
}

// HelpBindings returns bubbles bindings for the given contexts.
func HelpBindings(contexts ...string) []key.Binding {
	return lo.Map(ByContext(contexts...), func(b Binding, _ int) key.Binding {
		return b.KeyBinding()
	})
}

// helpKey renders a key for the help line.
func helpKey(k string) string {
	switch k {
	case " ":
		return "space"
	case "left":
		return "←"
	case "right":
		return "→"
	case "up":
		return "↑"
	case "down":
		return "↓"
	default:
		return k
	}
}

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reprise/internal/playback"
)

// WatchServiceEvents returns a command that waits for the next controller
// event and converts it to a tea.Msg.
func WatchServiceEvents(sub *playback.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case d := <-sub.DisplayChanged:
			return DisplayMsg{Display: d}
		case e := <-sub.Resumed:
			return ResumedMsg{Event: e}
		case e := <-sub.Error:
			return ServiceErrorMsg{Event: e}
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}

// WatchPrompts returns a command that waits for the next resume question.
func WatchPrompts(p *Prompter) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case req := <-p.requests:
			return PromptMsg{Request: req.ResumeRequest, reply: req.reply}
		case <-p.done:
			return nil
		}
	}
}

// OpenMediaCmd opens path off the UI goroutine, since it may wait for the
// resume prompt that this same UI has to show.
func OpenMediaCmd(svc playback.Service, path string) tea.Cmd {
	return func() tea.Msg {
		return OpenedMsg{Path: path, Err: svc.OpenMedia(context.Background(), path)}
	}
}

// ShutdownCmd runs the controller's shutdown sequence.
func ShutdownCmd(svc playback.Service) tea.Cmd {
	return func() tea.Msg {
		return shutdownDoneMsg{Err: svc.Shutdown()}
	}
}

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reprise/internal/playback"
)

// DisplayMsg carries a new display snapshot from the controller.
type DisplayMsg struct {
	Display playback.Display
}

// ResumedMsg is sent when a file started from its saved offset.
type ResumedMsg struct {
	Event playback.ResumeEvent
}

// ServiceErrorMsg is sent when the controller reports a failure.
type ServiceErrorMsg struct {
	Event playback.ErrorEvent
}

// ServiceClosedMsg is sent when the controller has shut down.
type ServiceClosedMsg struct{}

// PromptMsg asks the user whether to resume.
type PromptMsg struct {
	Request playback.ResumeRequest
	reply   chan<- bool
}

// OpenedMsg reports the outcome of an OpenMedia command.
type OpenedMsg struct {
	Path string
	Err  error
}

// QuitMsg asks the model to shut down and exit, e.g. from MPRIS.
type QuitMsg struct{}

// shutdownDoneMsg is sent once Shutdown has returned.
type shutdownDoneMsg struct {
	Err error
}

// Notification represents a temporary status line message.
type Notification struct {
	ID      int64
	Message string
	Error   bool
}

// NotificationClearMsg is sent to clear a specific notification after a delay.
type NotificationClearMsg struct {
	ID int64
}

// NotificationDuration is how long notifications are displayed.
const NotificationDuration = 4 * time.Second

// NotificationClearCmd returns a command that clears the notification after a delay.
func NotificationClearCmd(id int64) tea.Cmd {
	return tea.Tick(NotificationDuration, func(time.Time) tea.Msg {
		return NotificationClearMsg{ID: id}
	})
}

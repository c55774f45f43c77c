package chat

import (
	"charm.land/lipgloss/v2"

	"github.com/askdokita/dokita/internal/tui/styles"
)

// Status represents the current chat status.
type Status int

// Status values.
const (
	StatusReady Status = iota
	StatusStreaming
	StatusError
)

// advisory is shown permanently in the status bar.
const advisory = "Not a substitute for professional medical advice"

// StatusBar displays the current chat status.
type StatusBar struct {
	status   Status
	errorMsg string
	notice   string
	title    string
	width    int
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{
		status: StatusReady,
	}
}

// SetStatus sets the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.status = status
	s.notice = ""
	if status == StatusReady {
		s.errorMsg = ""
	}
}

// SetNotice shows a transient informational message until the next status
// change.
func (s *StatusBar) SetNotice(msg string) {
	s.notice = msg
}

// SetError sets an error message.
func (s *StatusBar) SetError(msg string) {
	s.status = StatusError
	s.errorMsg = msg
}

// SetTitle sets the active session title shown in the bar.
func (s *StatusBar) SetTitle(title string) {
	s.title = title
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := styles.CurrentTheme()

	var statusText string
	var statusStyle lipgloss.Style

	switch {
	case s.notice != "":
		statusText = s.notice
		statusStyle = t.S().Info
	case s.status == StatusStreaming:
		statusText = "Dokita is typing..."
		statusStyle = t.S().Info
	case s.status == StatusError:
		statusText = "Error: " + s.errorMsg
		statusStyle = t.S().Error
	default:
		statusText = "Ready"
		statusStyle = t.S().Success
	}

	barStyle := lipgloss.NewStyle().
		Width(s.width).
		Padding(0, 1).
		Background(t.BgSubtle)

	left := statusStyle.Render(statusText)
	if s.title != "" {
		left += t.S().Muted.Render("  |  " + s.title)
	}
	right := t.S().Muted.Render(advisory)

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	content := left + lipgloss.NewStyle().Width(gap).Render("") + right

	return barStyle.Render(content)
}

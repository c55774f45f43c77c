// Package sessions provides the session picker panel for the dokita TUI.
package sessions

// SelectedMsg is sent when a session is chosen.
type SelectedMsg struct {
	SessionID string
}

// DeleteRequestMsg asks for a session to be deleted (after confirmation).
type DeleteRequestMsg struct {
	SessionID string
	Title     string
}

// NewRequestMsg asks for a new session (after confirmation).
type NewRequestMsg struct{}

// CloseMsg closes the panel.
type CloseMsg struct{}

// Package util provides small helpers shared by TUI components.
package util

import tea "charm.land/bubbletea/v2"

// CmdHandler wraps a message in a command.
func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// InfoMsg carries a transient status line for the UI.
type InfoMsg struct {
	Msg string
}

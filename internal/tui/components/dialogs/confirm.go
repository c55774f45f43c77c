// Package dialogs provides modal dialogs for the dokita TUI.
package dialogs

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/askdokita/dokita/internal/tui/styles"
	"github.com/askdokita/dokita/internal/tui/util"
)

// ResultMsg reports the outcome of a confirm dialog. Action is the message
// the caller attached when opening the dialog.
type ResultMsg struct {
	Accepted bool
	Action   tea.Msg
}

// Confirm is a yes/no modal dialog.
type Confirm struct {
	title  string
	prompt string
	action tea.Msg
	width  int
	height int
}

// NewConfirm creates a confirm dialog carrying the given action message.
func NewConfirm(title, prompt string, action tea.Msg) *Confirm {
	return &Confirm{
		title:  title,
		prompt: prompt,
		action: action,
	}
}

// SetSize sets the area the dialog is centered in.
func (c *Confirm) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Update handles key events. Any other message is ignored.
func (c *Confirm) Update(msg tea.Msg) (*Confirm, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch keyMsg.String() {
	case "y", "Y", "enter":
		return c, util.CmdHandler(ResultMsg{Accepted: true, Action: c.action})
	case "n", "N", "esc":
		return c, util.CmdHandler(ResultMsg{Accepted: false, Action: c.action})
	}
	return c, nil
}

// View renders the dialog centered in its area.
func (c *Confirm) View() string {
	t := styles.CurrentTheme()

	title := t.S().Title.Render(c.title)
	prompt := t.S().Text.Render(c.prompt)
	hint := t.S().Muted.Render("[y] yes  [n] no")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, "", prompt, "", hint))

	return lipgloss.Place(c.width, c.height, lipgloss.Center, lipgloss.Center, box)
}

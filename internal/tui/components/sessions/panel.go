package sessions

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/askdokita/dokita/internal/session"
	"github.com/askdokita/dokita/internal/tui/styles"
	"github.com/askdokita/dokita/internal/tui/util"
)

// Panel is the session picker overlay.
type Panel struct {
	sessions []*session.Session
	activeID string
	cursor   int
	offset   int
	width    int
	height   int
}

// NewPanel creates a session picker panel.
func NewPanel() *Panel {
	return &Panel{}
}

// SetSessions replaces the listed sessions and clamps the cursor.
func (p *Panel) SetSessions(sessions []*session.Session, activeID string) {
	p.sessions = sessions
	p.activeID = activeID
	if p.cursor >= len(sessions) {
		p.cursor = len(sessions) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.ensureVisible()
}

// SetSize sets the area the panel is centered in.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Selected returns the session under the cursor, if any.
func (p *Panel) Selected() (*session.Session, bool) {
	if p.cursor < 0 || p.cursor >= len(p.sessions) {
		return nil, false
	}
	return p.sessions[p.cursor], true
}

// Update handles key events.
func (p *Panel) Update(msg tea.Msg) (*Panel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
			p.ensureVisible()
		}

	case "down", "j":
		if p.cursor < len(p.sessions)-1 {
			p.cursor++
			p.ensureVisible()
		}

	case "g":
		p.cursor = 0
		p.ensureVisible()

	case "G":
		if len(p.sessions) > 0 {
			p.cursor = len(p.sessions) - 1
			p.ensureVisible()
		}

	case "enter":
		if sess, ok := p.Selected(); ok {
			return p, util.CmdHandler(SelectedMsg{SessionID: sess.ID})
		}

	case "n":
		return p, util.CmdHandler(NewRequestMsg{})

	case "d":
		if sess, ok := p.Selected(); ok {
			return p, util.CmdHandler(DeleteRequestMsg{SessionID: sess.ID, Title: sess.Title})
		}

	case "esc", "ctrl+s":
		return p, util.CmdHandler(CloseMsg{})
	}

	return p, nil
}

func (p *Panel) visibleRows() int {
	rows := p.panelHeight() - 4 // borders, title, hint line
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (p *Panel) ensureVisible() {
	rows := p.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
}

func (p *Panel) panelWidth() int {
	w := p.width - 10
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

func (p *Panel) panelHeight() int {
	h := p.height - 6
	if h > 20 {
		h = 20
	}
	if h < 7 {
		h = 7
	}
	return h
}

// View renders the panel centered in its area.
func (p *Panel) View() string {
	t := styles.CurrentTheme()

	innerWidth := p.panelWidth() - 4 // border and padding
	rows := p.visibleRows()

	var lines []string
	if len(p.sessions) == 0 {
		lines = append(lines, t.S().Muted.Render("No chats yet."))
	}

	end := p.offset + rows
	if end > len(p.sessions) {
		end = len(p.sessions)
	}
	for i := p.offset; i < end; i++ {
		lines = append(lines, p.renderSession(i, innerWidth))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}

	hint := t.S().Subtle.Render("enter select  n new  d delete  esc close")
	body := lipgloss.JoinVertical(lipgloss.Left, append(lines, "", hint)...)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(0, 1).
		Width(p.panelWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			t.S().Title.Render("Chats"),
			body,
		))

	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}

func (p *Panel) renderSession(i, width int) string {
	t := styles.CurrentTheme()
	sess := p.sessions[i]

	marker := "  "
	if i == p.cursor {
		marker = "> "
	}

	title := sess.Title
	meta := fmt.Sprintf(" (%d) %s", len(sess.Messages), formatRelativeTime(sess.CreatedAt))
	if sess.ID == p.activeID {
		meta += " *"
	}

	line := marker + title + t.S().Muted.Render(meta)
	line = truncateToWidth(line, width)

	if i == p.cursor {
		return t.S().Primary.Render(line)
	}
	return t.S().Text.Render(line)
}

func truncateToWidth(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func formatRelativeTime(ts time.Time) string {
	d := time.Since(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

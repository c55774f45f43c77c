package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/askdokita/dokita/internal/session"
	"github.com/askdokita/dokita/internal/tui/styles"
)

// StarterPrompts are suggested questions shown on the empty session screen.
var StarterPrompts = []string{
	"What are the symptoms of malaria?",
	"How can I prevent cholera?",
}

// MessageList displays the conversation messages.
type MessageList struct {
	messages []session.Message
	width    int
	height   int
	offset   int
}

// NewMessageList creates a new message list component.
func NewMessageList() *MessageList {
	return &MessageList{
		messages: []session.Message{},
	}
}

// SetMessages sets the messages to display.
func (m *MessageList) SetMessages(messages []session.Message) {
	m.messages = messages
}

// UpdateLast updates the last message (for streaming).
func (m *MessageList) UpdateLast(content string) {
	if len(m.messages) == 0 {
		return
	}
	m.messages[len(m.messages)-1].Content = content
}

// Last returns the last message, if any.
func (m *MessageList) Last() (session.Message, bool) {
	if len(m.messages) == 0 {
		return session.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}

// IsEmpty reports whether the conversation has no messages.
func (m *MessageList) IsEmpty() bool {
	return len(m.messages) == 0
}

// SetSize sets the component size.
func (m *MessageList) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ScrollUp scrolls the message list up.
func (m *MessageList) ScrollUp() {
	m.offset++
}

// ScrollDown scrolls the message list down.
func (m *MessageList) ScrollDown() {
	if m.offset > 0 {
		m.offset--
	}
}

// ScrollToBottom scrolls to the bottom of the list.
func (m *MessageList) ScrollToBottom() {
	m.offset = 0 // Rendering is bottom-anchored, so 0 is the bottom
}

// View renders the message list.
func (m *MessageList) View() string {
	if len(m.messages) == 0 {
		return m.renderEmptyState()
	}

	var rendered []string
	for _, msg := range m.messages {
		rendered = append(rendered, m.renderMessage(msg))
	}
	content := strings.Join(rendered, "\n\n")

	// Clip bottom-anchored so the latest message stays visible while
	// streaming; offset scrolls back through history.
	lines := strings.Split(content, "\n")
	if len(lines) > m.height {
		maxOffset := len(lines) - m.height
		if m.offset > maxOffset {
			m.offset = maxOffset
		}
		end := len(lines) - m.offset
		lines = lines[end-m.height : end]
	} else {
		m.offset = 0
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(0, 1)

	return containerStyle.Render(strings.Join(lines, "\n"))
}

func (m *MessageList) renderEmptyState() string {
	t := styles.CurrentTheme()

	var sb strings.Builder
	sb.WriteString(t.S().Title.Render("AskDokita"))
	sb.WriteString("\n")
	sb.WriteString(t.S().Muted.Render("Your personal health assistant."))
	sb.WriteString("\n\n")
	sb.WriteString(t.S().Text.Render("Try asking:"))
	sb.WriteString("\n")
	for _, prompt := range StarterPrompts {
		sb.WriteString(t.S().Accent.Render("  • " + prompt))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(t.S().Subtle.Render("Press tab to fill in a suggestion."))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}

func (m *MessageList) renderMessage(msg session.Message) string {
	t := styles.CurrentTheme()

	contentWidth := m.width - 4 // Account for padding

	switch msg.Role {
	case session.RoleUser:
		return m.renderUserMessage(msg, contentWidth)
	case session.RoleAssistant:
		return m.renderAssistantMessage(msg, contentWidth)
	default:
		return t.S().Muted.Render(msg.Content)
	}
}

func (m *MessageList) renderUserMessage(msg session.Message, width int) string {
	t := styles.CurrentTheme()

	header := t.S().Text.Bold(true).Render("You")
	content := t.S().Text.Width(width).Render(msg.Content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content)
}

func (m *MessageList) renderAssistantMessage(msg session.Message, width int) string {
	t := styles.CurrentTheme()

	header := t.S().Primary.Bold(true).Render("Dokita")

	content := msg.Content
	if content == "" {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			t.S().Muted.Render("..."))
	}

	body := t.S().Text.Width(width).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// Package chat provides the conversation page for the dokita TUI.
package chat

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/askdokita/dokita/internal/agent"
	"github.com/askdokita/dokita/internal/bridge"
	"github.com/askdokita/dokita/internal/debug"
	"github.com/askdokita/dokita/internal/events"
	"github.com/askdokita/dokita/internal/pubsub"
	"github.com/askdokita/dokita/internal/session"
	"github.com/askdokita/dokita/internal/tui/styles"
	"github.com/askdokita/dokita/internal/tui/util"
)

// Model is the chat page model.
type Model struct {
	agent       *agent.Agent
	sessions    *session.Service
	messages    *MessageList
	input       *Input
	status      *StatusBar
	sessionID   string
	isStreaming bool
	suggestIdx  int
	width       int
	height      int
}

// New creates a new chat page model.
func New(ag *agent.Agent, sessions *session.Service) *Model {
	return &Model{
		agent:    ag,
		sessions: sessions,
		messages: NewMessageList(),
		input:    NewInput(),
		status:   NewStatusBar(),
	}
}

// Init initializes the chat page.
func (m *Model) Init() tea.Cmd {
	m.Refresh()
	return m.input.Init()
}

// Refresh re-reads the active session from the store and re-syncs the
// streaming state with it. The shown session can change while a response
// streams into another one, so isStreaming always tracks the session on
// screen, not the one that last produced an event.
func (m *Model) Refresh() {
	sess := m.sessions.Active()
	if sess == nil {
		return
	}
	m.sessionID = sess.ID
	m.messages.SetMessages(sess.Messages)
	m.messages.ScrollToBottom()
	m.status.SetTitle(sess.Title)

	m.isStreaming = m.agent.IsBusy(sess.ID)
	if m.isStreaming {
		m.status.SetStatus(StatusStreaming)
		m.input.Disable()
	} else {
		m.status.SetStatus(StatusReady)
		m.input.Enable()
	}
}

// SessionID returns the session the page is showing.
func (m *Model) SessionID() string {
	return m.sessionID
}

// IsStreaming reports whether a response is in flight.
func (m *Model) IsStreaming() bool {
	return m.isStreaming
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case bridge.StreamEventMsg:
		return m.handleStreamEvent(msg.Event)

	case bridge.SessionEventMsg:
		return m.handleSessionEvent(msg.Event)

	case util.InfoMsg:
		m.status.SetNotice(msg.Msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.isStreaming {
			return m, nil
		}

		value := m.input.Value()
		if value == "" {
			return m, nil
		}

		m.input.Clear()
		m.input.Disable()
		m.isStreaming = true
		m.status.SetStatus(StatusStreaming)

		// Optimistic render; the store catches up through session events.
		m.messages.SetMessages(append(m.currentMessages(),
			session.Message{Role: session.RoleUser, Content: value},
			session.Message{Role: session.RoleAssistant, Content: ""},
		))
		m.messages.ScrollToBottom()

		return m, m.sendMessage(value)

	case "tab":
		if !m.isStreaming && m.messages.IsEmpty() {
			m.input.SetValue(StarterPrompts[m.suggestIdx%len(StarterPrompts)])
			m.suggestIdx++
		}
		return m, nil

	case "esc":
		if m.isStreaming {
			m.agent.Cancel(m.sessionID)
		}
		return m, nil

	case "ctrl+y":
		return m, m.copyLastReply()

	case "pgup":
		m.messages.ScrollUp()
		return m, nil

	case "pgdown":
		m.messages.ScrollDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) currentMessages() []session.Message {
	sess, err := m.sessions.Get(m.sessionID)
	if err != nil {
		return nil
	}
	return sess.Messages
}

func (m *Model) sendMessage(prompt string) tea.Cmd {
	sessionID := m.sessionID
	return func() tea.Msg {
		// Outcome arrives through stream events on the bridge.
		if err := m.agent.Send(context.Background(), sessionID, prompt); err != nil {
			debug.Error("chat", err, "sending message")
		}
		return nil
	}
}

func (m *Model) copyLastReply() tea.Cmd {
	sess, err := m.sessions.Get(m.sessionID)
	if err != nil {
		return nil
	}
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == session.RoleAssistant && sess.Messages[i].Content != "" {
			content := sess.Messages[i].Content
			return func() tea.Msg {
				if err := clipboard.WriteAll(content); err != nil {
					debug.Error("chat", err, "copying reply to clipboard")
					return util.InfoMsg{Msg: "Copy failed"}
				}
				return util.InfoMsg{Msg: fmt.Sprintf("Copied %d characters", len(content))}
			}
		}
	}
	return nil
}

// handleStreamEvent processes streaming events from the pub/sub bridge.
func (m *Model) handleStreamEvent(event pubsub.Event[events.StreamEvent]) (*Model, tea.Cmd) {
	if event.Payload.SessionID != m.sessionID {
		return m, nil
	}

	switch event.Payload.Type {
	case events.StreamEventStarted:
		m.isStreaming = true
		m.status.SetStatus(StatusStreaming)

	case events.StreamEventTextDelta:
		if last, ok := m.messages.Last(); ok {
			m.messages.UpdateLast(last.Content + event.Payload.TextDelta)
			m.messages.ScrollToBottom()
		}

	case events.StreamEventComplete, events.StreamEventCancelled:
		m.Refresh()
		return m, m.input.Focus()

	case events.StreamEventError:
		// The store already holds the failure notice; Refresh picks it
		// up, then the status bar gets the cause.
		m.Refresh()
		if event.Payload.Error != nil {
			m.status.SetError(event.Payload.Error.Error())
		} else {
			m.status.SetError("unknown error")
		}
		return m, m.input.Focus()
	}

	return m, nil
}

// handleSessionEvent processes session events from the pub/sub bridge.
func (m *Model) handleSessionEvent(event pubsub.Event[events.SessionEvent]) (*Model, tea.Cmd) {
	switch event.Payload.Type {
	case events.SessionEventCreated, events.SessionEventSwitched, events.SessionEventDeleted:
		if m.sessions.ActiveID() != m.sessionID {
			m.Refresh()
		} else if event.Payload.Type == events.SessionEventDeleted {
			m.Refresh()
		}

	case events.SessionEventMessageAdded:
		if event.Payload.SessionID == m.sessionID {
			m.status.SetTitle(m.titleOf(m.sessionID))
		}
	}

	return m, nil
}

func (m *Model) titleOf(id string) string {
	sess, err := m.sessions.Get(id)
	if err != nil {
		return ""
	}
	return sess.Title
}

// View renders the chat page.
func (m *Model) View() string {
	t := styles.CurrentTheme()

	m.messages.SetSize(m.width, m.messagesAreaHeight())
	m.input.SetWidth(m.width)
	m.status.SetWidth(m.width)

	separator := lipgloss.NewStyle().
		Width(m.width).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Render("")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.messages.View(),
		separator,
		m.input.View(),
		m.status.View(),
	)
}

// SetSize sets the chat page size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// messagesAreaHeight calculates the current height of the messages area.
func (m *Model) messagesAreaHeight() int {
	h := m.height - 1 - m.input.Height() - 1 // status, input, separator
	if h < 1 {
		h = 1
	}
	return h
}

// Cursor returns the cursor position.
func (m *Model) Cursor() *tea.Cursor {
	if !m.isStreaming {
		return m.input.Cursor()
	}
	return nil
}

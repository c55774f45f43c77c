// Package tui provides the terminal user interface for dokita.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/askdokita/dokita/internal/agent"
	"github.com/askdokita/dokita/internal/bridge"
	"github.com/askdokita/dokita/internal/debug"
	"github.com/askdokita/dokita/internal/pubsub"
	"github.com/askdokita/dokita/internal/session"
	"github.com/askdokita/dokita/internal/tui/components/dialogs"
	"github.com/askdokita/dokita/internal/tui/components/sessions"
	"github.com/askdokita/dokita/internal/tui/page/chat"
	"github.com/askdokita/dokita/internal/tui/styles"
)

// newChatMsg is the confirmed action for starting a fresh chat.
type newChatMsg struct{}

// deleteChatMsg is the confirmed action for deleting a chat.
type deleteChatMsg struct {
	sessionID string
}

// Model is the main TUI model.
type Model struct {
	chatPage   *chat.Model
	panel      *sessions.Panel
	confirm    *dialogs.Confirm
	agent      *agent.Agent
	sessionSvc *session.Service
	showPanel  bool
	width      int
	height     int
	ready      bool
}

// New creates a new TUI model.
func New(ag *agent.Agent, sessionSvc *session.Service) *Model {
	return &Model{
		agent:      ag,
		sessionSvc: sessionSvc,
		chatPage:   chat.New(ag, sessionSvc),
		panel:      sessions.NewPanel(),
	}
}

// Init initializes the TUI.
func (m *Model) Init() tea.Cmd {
	return m.chatPage.Init()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		debug.Event("tui", "WindowSize", fmt.Sprintf("width=%d height=%d", msg.Width, msg.Height))
		m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		debug.Event("tui", "KeyMsg", fmt.Sprintf("key=%q", msg.String()))
		return m.handleKey(msg)

	case dialogs.ResultMsg:
		return m.handleConfirmResult(msg)

	case sessions.SelectedMsg:
		if err := m.sessionSvc.SelectSession(msg.SessionID); err != nil {
			debug.Error("tui", err, "selecting session")
		}
		m.showPanel = false
		m.chatPage.Refresh()
		return m, nil

	case sessions.NewRequestMsg:
		return m.openConfirm("New Chat", "Start a new chat?", newChatMsg{})

	case sessions.DeleteRequestMsg:
		prompt := fmt.Sprintf("Delete %q?", msg.Title)
		return m.openConfirm("Delete Chat", prompt, deleteChatMsg{sessionID: msg.SessionID})

	case sessions.CloseMsg:
		m.showPanel = false
		return m, nil

	case bridge.SessionEventMsg:
		// Keep the panel in sync while it is open.
		if m.showPanel {
			m.panel.SetSessions(m.sessionSvc.Sessions(), m.sessionSvc.ActiveID())
		}
		_, cmd := m.chatPage.Update(msg)
		return m, cmd
	}

	_, cmd := m.chatPage.Update(msg)
	return m, cmd
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.chatPage.SetSize(msg.Width, msg.Height)
	m.panel.SetSize(msg.Width, msg.Height)
	if m.confirm != nil {
		m.confirm.SetSize(msg.Width, msg.Height)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.chatPage.IsStreaming() {
			m.agent.Cancel(m.chatPage.SessionID())
		}
		return m, tea.Quit
	}

	if m.confirm != nil {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+n":
		return m.openConfirm("New Chat", "Start a new chat?", newChatMsg{})

	case "ctrl+s":
		if !m.showPanel {
			m.panel.SetSessions(m.sessionSvc.Sessions(), m.sessionSvc.ActiveID())
			m.showPanel = true
			return m, nil
		}
		m.showPanel = false
		return m, nil
	}

	if m.showPanel {
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd
	}

	_, cmd := m.chatPage.Update(msg)
	return m, cmd
}

func (m *Model) openConfirm(title, prompt string, action tea.Msg) (tea.Model, tea.Cmd) {
	m.confirm = dialogs.NewConfirm(title, prompt, action)
	m.confirm.SetSize(m.width, m.height)
	return m, nil
}

func (m *Model) handleConfirmResult(msg dialogs.ResultMsg) (tea.Model, tea.Cmd) {
	m.confirm = nil
	if !msg.Accepted {
		return m, nil
	}

	switch action := msg.Action.(type) {
	case newChatMsg:
		m.sessionSvc.CreateSession()
		m.showPanel = false
		m.chatPage.Refresh()

	case deleteChatMsg:
		m.sessionSvc.DeleteSession(action.sessionID)
		if m.showPanel {
			m.panel.SetSessions(m.sessionSvc.Sessions(), m.sessionSvc.ActiveID())
		}
		m.chatPage.Refresh()
	}

	return m, nil
}

// View renders the TUI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if !m.ready {
		view.Content = "Loading..."
		return view
	}

	switch {
	case m.confirm != nil:
		view.Content = m.confirm.View()
	case m.showPanel:
		view.Content = m.panel.View()
	default:
		view.Content = m.chatPage.View()
		view.Cursor = m.chatPage.Cursor()
	}

	return view
}

// Run starts the TUI program.
func Run(ag *agent.Agent, sessionSvc *session.Service, hub *pubsub.Hub) error {
	// Check if running in a terminal.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("dokita requires an interactive terminal: stdin/stdout must be connected to a TTY")
	}

	styles.SetTheme(styles.NewDefaultTheme())

	model := New(ag, sessionSvc)
	p := tea.NewProgram(model)

	// Forward pub/sub events to Bubble Tea messages while the program runs.
	if hub != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		tuiBridge := bridge.NewTUIBridge(hub, p)
		tuiBridge.Start(ctx)
		defer tuiBridge.Stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

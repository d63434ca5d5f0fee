package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/domain"
)

// ChatPort is the TUI-facing subset of the retrieval service.
type ChatPort interface {
	GenerateResponse(ctx context.Context, query string, history []domain.Message) (domain.RetrievalResponse, error)
}

// Recorder persists the transcript when a session id is set.
type Recorder interface {
	Append(id string, messages ...domain.Message) error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service   ChatPort
	recorder  Recorder
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	history   []domain.Message
	lastResp  *domain.RetrievalResponse
	status    string
	ready     bool
}

// New creates a new chat model. recorder and sessionID may be empty for an
// unpersisted conversation.
func New(service ChatPort, recorder Recorder, sessionID string, banner string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	status := banner
	if status == "" {
		status = "Ready. Type a question."
	}
	return Model{service: service, recorder: recorder, sessionID: sessionID, input: ti, viewport: vp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input box + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ch)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				m.status = "Type a question first."
				return m, nil
			}
			m.input.SetValue("")
			resp, err := m.service.GenerateResponse(context.Background(), query, m.history)
			if err != nil {
				m.status = "Error: " + err.Error()
				m.viewport.SetContent(m.renderTranscript())
				return m, nil
			}
			userMsg := domain.Message{Role: "user", Content: query}
			assistantMsg := domain.Message{Role: "assistant", Content: resp.Content}
			m.history = append(m.history, userMsg, assistantMsg)
			m.lastResp = &resp
			m.status = fmt.Sprintf("Confidence %.2f", resp.Confidence)
			if m.recorder != nil && m.sessionID != "" {
				if err := m.recorder.Append(m.sessionID, userMsg, assistantMsg); err != nil {
					m.status += "  (session not saved: " + err.Error() + ")"
				}
			}
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docchat")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No messages yet. Ask a question about the ingested documents."
	}
	var b strings.Builder
	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			b.WriteString(userStyle.Render("you") + "  " + msg.Content)
		default:
			b.WriteString(assistantStyle.Render("bot") + "  " + msg.Content)
		}
		b.WriteString("\n\n")
	}
	if m.lastResp != nil && len(m.lastResp.Sources) > 0 {
		b.WriteString(sourceStyle.Render("sources:"))
		b.WriteString("\n")
		for _, src := range m.lastResp.Sources {
			b.WriteString(sourceStyle.Render(fmt.Sprintf("  %s: %s", src.DocumentName, src.Excerpt)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

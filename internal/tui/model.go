package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdem/internal/game"
)

const sidebarWidth = 28

// LogMsg appends rendered lines to the hand log
type LogMsg struct {
	Lines []string
}

// PromptMsg asks the hero for an action
type PromptMsg struct {
	State   *game.GameState
	Hero    string
	Options []game.ActionOption
	Cards   string // hero's hole cards, already styled
}

// ErrorMsg reports a rejected input
type ErrorMsg struct {
	Err error
}

// Model is the Bubble Tea model: a scrolling hand log, a sidebar with the
// stacks and an input line for the hero's commands.
type Model struct {
	logView viewport.Model
	input   textinput.Model

	lines   []string
	prompt  *PromptMsg
	lastErr error

	// submit receives each line entered while a prompt is open
	submit chan<- string
	// quit is called once when the user leaves
	quit func()

	focusedPane int // 0 = log, 1 = input
	width       int
	height      int
	quitting    bool
}

// NewModel creates a model delivering input lines to submit
func NewModel(submit chan<- string, quit func()) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "Waiting..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.Prompt = "> "

	if quit == nil {
		quit = func() {}
	}
	return &Model{
		logView:     vp,
		input:       ti,
		submit:      submit,
		quit:        quit,
		focusedPane: 1,
	}
}

// Init starts the cursor blinking
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LogMsg:
		m.lines = append(m.lines, msg.Lines...)
		m.logView.SetContent(strings.Join(m.lines, "\n"))
		m.logView.GotoBottom()

	case PromptMsg:
		m.prompt = &msg
		m.lastErr = nil
		m.input.Placeholder = "fold, check, call, raise 40, allin, quit"

	case ErrorMsg:
		m.lastErr = msg.Err

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.quit()
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if m.prompt != nil && line != "" {
					m.prompt = nil
					m.input.Placeholder = "Waiting..."
					m.submit <- line
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logView.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logView.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logView.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logView.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logView, cmd = m.logView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the log and sidebar above the action pane
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(1)).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	topHeight := max(m.height-actionHeight-4, 1)
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor).
		Width(sidebarWidth).
		Height(topHeight).
		Render(m.renderSidebar())

	m.logView.Width = max(m.width-sidebarWidth-4, 1)
	m.logView.Height = topHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(0)).
		Width(m.logView.Width).
		Height(topHeight).
		Render(m.logView.View())

	return lipgloss.JoinVertical(lipgloss.Top,
		lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar),
		actionPane)
}

func (m *Model) borderColor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return focusColor
	}
	return paneColor
}

func (m *Model) renderSidebar() string {
	if m.prompt == nil || m.prompt.State == nil {
		return mutedStyle.Render("No hand in progress")
	}
	s := m.prompt.State

	var b strings.Builder
	b.WriteString(potStyle.Render(fmt.Sprintf("Pot: %d", s.Pot)))
	if s.CurrentBet > 0 {
		b.WriteString(" | ")
		b.WriteString(potStyle.Render(fmt.Sprintf("Bet: %d", s.CurrentBet)))
	}
	b.WriteString("\n\n")
	for _, p := range s.Players {
		if !p.IsActive {
			continue
		}
		line := fmt.Sprintf("%-12s %6d", p.ID, p.Chips)
		switch {
		case p.IsFolded:
			line = mutedStyle.Render(line + " f")
		case p.IsAllIn:
			line = actionsStyle.Render(line + " a")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder
	if m.prompt != nil {
		info := fmt.Sprintf("Hand: %s", m.prompt.Cards)
		if s := m.prompt.State; s != nil {
			if p := s.Player(m.prompt.Hero); p != nil && s.ToCall(p) > 0 {
				info += fmt.Sprintf("  To call: %d", s.ToCall(p))
			}
		}
		b.WriteString(handInfoStyle.Render(info))
		b.WriteString("\n")
		b.WriteString(actionsStyle.Render("Actions: " + describeOptions(m.prompt.Options)))
		b.WriteString("\n")
	} else {
		b.WriteString(handInfoStyle.Render("Waiting..."))
		b.WriteString("\n")
	}
	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(mutedStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		b.WriteString(mutedStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

func describeOptions(options []game.ActionOption) string {
	parts := make([]string, 0, len(options))
	for _, o := range options {
		switch o.Type {
		case game.ActionRaise:
			parts = append(parts, fmt.Sprintf("[raise %d-%d]", o.Min, o.Max))
		case game.ActionAllIn:
			parts = append(parts, fmt.Sprintf("[allin %d]", o.Max))
		default:
			parts = append(parts, "["+o.Type.String()+"]")
		}
	}
	if len(parts) == 0 {
		return "[none]"
	}
	return strings.Join(parts, " ")
}

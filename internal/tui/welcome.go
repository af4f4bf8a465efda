package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type statusRequestMsg struct{}
type refreshRequestMsg struct{}
type logoutRequestMsg struct{}

// returns a new welcome screen
func NewWelcome(mode string) *Welcome {
	commands := []Command{
		{Name: "status", Description: "show the current session", Available: true},
		{Name: "login", Description: "sign in with email and password", Available: true},
		{Name: "profile", Description: "view your profile (requires sign-in)", Available: true},
		{Name: "refresh", Description: "re-check the session with the server", Available: true},
		{Name: "logout", Description: "sign out and forget this device", Available: true},
		{Name: "quit", Description: "exit biolink", Available: true},
	}

	return &Welcome{
		mode:     mode,
		commands: commands,
	}
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			cmd := m.executeCommand()
			m.input = ""
			return m, cmd
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		default:
			if len(msg.String()) == 1 {
				m.input += msg.String()
			}
		}
	}

	return m, nil
}

func (m *Welcome) View(status, notice string, err error) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("one link for everything you are"))
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("mode: %s", strings.ToUpper(m.mode))))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("commands:"))
	b.WriteString("\n\n")

	for _, cmd := range m.commands {
		if !cmd.Available {
			continue
		}
		line := fmt.Sprintf("  %s %s",
			commandStyle.Render(cmd.Name),
			commandDescStyle.Render("- "+cmd.Description),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")

	prompt := promptStyle.Render("> ")
	input := inputStyle.Render(m.input + "_")
	b.WriteString(prompt + input)
	b.WriteString("\n\n")

	if err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", err)))
		b.WriteString("\n")
	} else if notice != "" {
		b.WriteString(successStyle.Render(notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("type a command and press enter. press ctrl+c to quit."))

	return b.String()
}

func (m *Welcome) executeCommand() tea.Cmd {
	cmd := strings.TrimSpace(m.input)

	switch cmd {
	case "quit":
		return tea.Quit

	case "status":
		return func() tea.Msg { return statusRequestMsg{} }

	case "login":
		return func() tea.Msg { return NavigateMsg{To: StateSignIn} }

	case "profile":
		return func() tea.Msg { return NavigateMsg{To: StateProfile} }

	case "refresh":
		return func() tea.Msg { return refreshRequestMsg{} }

	case "logout":
		return func() tea.Msg { return logoutRequestMsg{} }

	default:
		if cmd != "" {
			return func() tea.Msg {
				return ErrorMsg{err: fmt.Errorf("unknown command: %s", cmd)}
			}
		}
		return nil
	}
}

package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errMissingCredentials = errors.New("email and password are required")

// returns an empty sign-in form
func NewSignIn() *SignInModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40
	email.Prompt = "email    > "
	email.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	email.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 72
	password.Width = 40
	password.Prompt = "password > "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	password.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	return &SignInModel{email: email, password: password}
}

// focuses the current field
func (m *SignInModel) Focus() tea.Cmd {
	if m.focused == 1 {
		m.email.Blur()
		return m.password.Focus()
	}

	m.password.Blur()
	return m.email.Focus()
}

// clears the form, keeping nothing from the previous attempt
func (m *SignInModel) Reset() {
	m.email.SetValue("")
	m.password.SetValue("")
	m.focused = 0
	m.submitting = false
	m.err = nil
	m.email.Blur()
	m.password.Blur()
}

func (m *SignInModel) Update(ctx context.Context, msg tea.Msg, signer SignInClient, auth AuthController) (*SignInModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab", "up", "down":
			m.focused = 1 - m.focused
			return m, m.Focus()

		case "enter":
			if m.focused == 0 {
				m.focused = 1
				return m, m.Focus()
			}

			email := strings.TrimSpace(m.email.Value())
			password := m.password.Value()
			if email == "" || password == "" {
				m.err = errMissingCredentials
				return m, nil
			}

			m.err = nil
			m.submitting = true
			m.password.SetValue("")
			return m, signIn(ctx, signer, auth, email, password)
		}
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}

	return m, cmd
}

func (m *SignInModel) View(spinner string, redirected bool) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("SIGN IN"))
	b.WriteString("\n")

	if redirected {
		b.WriteString(infoStyle.Render("sign in to continue to your profile"))
		b.WriteString("\n\n")
	}

	b.WriteString(borderStyle.Padding(0, 1).Render(m.email.View() + "\n" + m.password.View()))
	b.WriteString("\n\n")

	switch {
	case m.submitting:
		b.WriteString(spinner + " signing in...")
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("[Tab: switch field] [Enter: submit] [Esc: back]"))

	return b.String()
}

package tui

import (
	"fmt"
	"strings"

	"codeberg.org/biolink/client/internal/logger"
	"codeberg.org/biolink/client/internal/session"
	"github.com/charmbracelet/glamour"
)

const defaultProfileWidth = 80

func NewProfile() *ProfileModel {
	return &ProfileModel{width: defaultProfileWidth}
}

// resizes the word wrap; the renderer is rebuilt on the next SetUser
func (m *ProfileModel) SetWidth(width int) {
	if width <= 0 || width == m.width {
		return
	}

	m.width = width
	m.renderer = nil
}

// renders the user as markdown
func (m *ProfileModel) SetUser(user *session.User) {
	if user == nil {
		m.rendered = ""
		m.userID = ""
		return
	}

	md := profileMarkdown(user)

	if m.renderer == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(m.width-4),
		)
		if err != nil {
			logger.ErrorErr(err, "failed to create markdown renderer")
			m.rendered = md
			m.userID = user.ID
			return
		}
		m.renderer = renderer
	}

	out, err := m.renderer.Render(md)
	if err != nil {
		logger.ErrorErr(err, "failed to render profile")
		out = md
	}

	m.rendered = out
	m.userID = user.ID
}

func (m *ProfileModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PROFILE"))
	b.WriteString("\n")
	b.WriteString(m.rendered)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[Esc: back] [Ctrl+C: back]"))

	return b.String()
}

func profileMarkdown(user *session.User) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", displayName(user))

	if user.Username != "" {
		fmt.Fprintf(&b, "`@%s`\n\n", user.Username)
	}

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| email | %s |\n", user.Email)
	fmt.Fprintf(&b, "| plan | %s |\n", planName(user.Plan))
	fmt.Fprintf(&b, "| verified | %s |\n", yesNo(user.IsVerified))

	if user.AvatarURL != "" {
		fmt.Fprintf(&b, "| avatar | %s |\n", user.AvatarURL)
	}

	if planName(user.Plan) == session.PlanFree {
		b.WriteString("\n> upgrade to premium for custom domains, then run `refresh`.\n")
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

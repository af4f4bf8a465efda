package tui

import (
	"context"
	"fmt"

	"codeberg.org/biolink/client/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func NewApp(ctx context.Context, mode string, auth AuthController, signer SignInClient) *Model {
	updates, cancel := auth.Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorGray)

	return &Model{
		ctx:       ctx,
		auth:      auth,
		signer:    signer,
		updates:   updates,
		cancel:    cancel,
		state:     StateWelcome,
		mode:      mode,
		spinner:   sp,
		authState: auth.State(),
		welcome:   NewWelcome(mode),
		signIn:    NewSignIn(),
		profile:   NewProfile(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForState(m.updates), checkAuth(m.ctx, m.auth))
}

// stops listening for auth updates
func (m *Model) Close() {
	m.cancel()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && m.state == StateWelcome {
			return m, tea.Quit
		}

		// anywhere else ctrl+c and esc go back to the welcome screen
		if msg.String() == "ctrl+c" || (msg.String() == "esc" && m.state != StateWelcome) {
			m.back()
			return m, nil
		}

		m.err = nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.profile.SetWidth(msg.Width)
		if m.state == StateProfile && m.authState.IsAuthenticated() {
			m.profile.SetUser(m.authState.User())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case AuthStateMsg:
		return m.onAuthState(msg.State)

	case authClosedMsg:
		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case NoticeMsg:
		m.notice = msg.text
		return m, nil

	case NavigateMsg:
		return m.navigate(msg.To)

	case statusRequestMsg:
		m.notice = Describe(m.auth.State())
		return m, nil

	case refreshRequestMsg:
		m.notice = ""
		return m, tea.Batch(refreshAuth(m.ctx, m.auth), m.spinner.Tick)

	case logoutRequestMsg:
		m.notice = ""
		return m, logout(m.ctx, m.auth)

	case SignInResultMsg:
		return m.onSignIn(msg)
	}

	switch m.state {
	case StateWelcome:
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd

	case StateSignIn:
		var cmd tea.Cmd
		m.signIn, cmd = m.signIn.Update(m.ctx, msg, m.signer, m.auth)
		if m.signIn.submitting {
			return m, tea.Batch(cmd, m.spinner.Tick)
		}
		return m, cmd

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	switch m.state {
	case StateWelcome:
		return m.welcome.View(m.statusLine(), m.notice, m.err)

	case StateSignIn:
		return m.signIn.View(m.spinner.View(), m.returnTo != nil)

	case StateProfile:
		if m.authState.IsLoading() {
			return "\n  " + m.spinner.View() + " checking session...\n"
		}
		return m.profile.View()

	default:
		return "Unknown state"
	}
}

// current screen, exported for the CLI and tests
func (m *Model) Screen() AppState {
	return m.state
}

// moves to a screen; protected screens wait for a settled state and send
// signed-out users to the sign-in form, remembering where they were going
func (m *Model) navigate(to AppState) (tea.Model, tea.Cmd) {
	current := m.auth.State()
	m.authState = current

	if to == StateSignIn && current.IsAuthenticated() {
		m.notice = "already signed in as " + displayName(current.User())
		return m, nil
	}

	if !isProtected(to) {
		m.pending = nil
		m.state = to
		if to == StateSignIn {
			return m, m.signIn.Focus()
		}
		return m, nil
	}

	switch {
	case current.IsLoading():
		m.pending = &to
		return m, m.spinner.Tick

	case current.IsAuthenticated():
		m.pending = nil
		m.state = to
		m.profile.SetUser(current.User())
		return m, nil

	default:
		m.pending = nil
		m.returnTo = &to
		m.state = StateSignIn
		return m, m.signIn.Focus()
	}
}

func (m *Model) onAuthState(state session.State) (tea.Model, tea.Cmd) {
	m.authState = state
	cmds := []tea.Cmd{waitForState(m.updates)}

	if state.IsLoading() {
		cmds = append(cmds, m.spinner.Tick)
		return m, tea.Batch(cmds...)
	}

	if m.pending != nil {
		_, cmd := m.navigate(*m.pending)
		return m, tea.Batch(append(cmds, cmd)...)
	}

	if m.state == StateProfile {
		if !state.IsAuthenticated() {
			_, cmd := m.navigate(StateProfile)
			return m, tea.Batch(append(cmds, cmd)...)
		}
		m.profile.SetUser(state.User())
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) onSignIn(msg SignInResultMsg) (tea.Model, tea.Cmd) {
	m.signIn.submitting = false

	if msg.err != nil {
		m.signIn.err = msg.err
		return m, m.signIn.Focus()
	}

	m.signIn.Reset()
	m.notice = "signed in as " + displayName(m.auth.State().User())

	target := StateWelcome
	if m.returnTo != nil {
		target = *m.returnTo
		m.returnTo = nil
	}

	return m.navigate(target)
}

func (m *Model) back() {
	m.state = StateWelcome
	m.pending = nil
	m.returnTo = nil
	m.signIn.Reset()
}

func (m *Model) busy() bool {
	return m.authState.IsLoading() || m.signIn.submitting
}

func (m *Model) statusLine() string {
	if m.authState.IsLoading() {
		return m.spinner.View() + " checking session..."
	}
	return Describe(m.authState)
}

func isProtected(s AppState) bool {
	return s == StateProfile
}

// Describe renders a state as one line of plain text.
func Describe(state session.State) string {
	switch state.Status() {
	case session.StatusAuthenticated:
		user := state.User()
		return fmt.Sprintf("signed in as %s <%s>, plan %s", displayName(user), user.Email, planName(user.Plan))
	case session.StatusUnauthenticated:
		return "signed out"
	default:
		return "checking session..."
	}
}

func displayName(user *session.User) string {
	switch {
	case user == nil:
		return ""
	case user.DisplayName != "":
		return user.DisplayName
	case user.Username != "":
		return user.Username
	default:
		return user.ID
	}
}

func planName(plan string) string {
	if plan == "" {
		return session.PlanFree
	}
	return plan
}

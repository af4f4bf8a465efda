package tui

import (
	"context"

	"codeberg.org/biolink/client/internal/identity"
	"codeberg.org/biolink/client/internal/session"
	"codeberg.org/biolink/client/internal/sessionstore"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/glamour"
)

// represents the screen the TUI shows
type AppState int

const (
	StateWelcome AppState = iota
	StateSignIn
	StateProfile
)

func (s AppState) String() string {
	switch s {
	case StateWelcome:
		return "welcome"
	case StateSignIn:
		return "sign-in"
	case StateProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// the auth operations the TUI drives
type AuthController interface {
	State() session.State
	CheckAuthStatus(ctx context.Context) session.State
	RefreshAuth(ctx context.Context) session.State
	Login(ctx context.Context, user *session.User, creds sessionstore.Credentials) error
	Logout(ctx context.Context)
	Subscribe() (<-chan session.State, func())
}

// exchanges credentials with the identity endpoint
type SignInClient interface {
	SignIn(ctx context.Context, req identity.SignInRequest) (*identity.SignInResult, error)
}

// main TUI application model
type Model struct {
	ctx     context.Context
	auth    AuthController
	signer  SignInClient
	updates <-chan session.State
	cancel  func()

	state   AppState
	mode    string
	width   int
	height  int
	err     error
	notice  string
	spinner spinner.Model

	// last published auth state
	authState session.State

	// screen a protected navigation is waiting on, and where to go after sign-in
	pending  *AppState
	returnTo *AppState

	welcome *Welcome
	signIn  *SignInModel
	profile *ProfileModel
}

// sent when the controller publishes a new state
type AuthStateMsg struct {
	State session.State
}

// sent when the subscription channel is closed
type authClosedMsg struct{}

// sent when a sign-in attempt finishes
type SignInResultMsg struct {
	err error
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent to move to another screen, subject to the auth guard
type NavigateMsg struct {
	To AppState
}

// sent when a command finished with something to tell the user
type NoticeMsg struct {
	text string
}

// welcome screen model
type Welcome struct {
	mode     string
	input    string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
	Available   bool
}

// sign-in form
type SignInModel struct {
	email      textinput.Model
	password   textinput.Model
	focused    int
	submitting bool
	err        error
}

// markdown view of the signed-in user
type ProfileModel struct {
	width    int
	renderer *glamour.TermRenderer
	rendered string
	userID   string
}

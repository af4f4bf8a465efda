package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"codeberg.org/biolink/client/internal/identity"
	"codeberg.org/biolink/client/internal/session"
	"codeberg.org/biolink/client/internal/sessionstore"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ada = &session.User{
	ID:          "u-1",
	Username:    "ada",
	DisplayName: "Ada",
	Email:       "ada@example.com",
	Plan:        session.PlanPremium,
}

type fakeAuth struct {
	mu      sync.Mutex
	state   session.State
	creds   sessionstore.Credentials
	updates chan session.State
	logouts int
}

func newFakeAuth(state session.State) *fakeAuth {
	return &fakeAuth{state: state, updates: make(chan session.State, 8)}
}

func (f *fakeAuth) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeAuth) set(state session.State) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

func (f *fakeAuth) CheckAuthStatus(context.Context) session.State { return f.State() }
func (f *fakeAuth) RefreshAuth(context.Context) session.State { return f.State() }

func (f *fakeAuth) Login(_ context.Context, user *session.User, creds sessionstore.Credentials) error {
	if !user.Valid() {
		return errors.New("invalid user")
	}
	f.mu.Lock()
	f.creds = creds
	f.mu.Unlock()
	f.set(session.Authenticated(user))
	return nil
}

func (f *fakeAuth) Logout(context.Context) {
	f.mu.Lock()
	f.logouts++
	f.mu.Unlock()
	f.set(session.Unauthenticated(nil))
}

func (f *fakeAuth) Subscribe() (<-chan session.State, func()) {
	return f.updates, func() {}
}

type fakeSigner struct {
	result *identity.SignInResult
	err    error
	got    identity.SignInRequest
}

func (f *fakeSigner) SignIn(_ context.Context, req identity.SignInRequest) (*identity.SignInResult, error) {
	f.got = req
	return f.result, f.err
}

func newModel(auth *fakeAuth, signer *fakeSigner) *Model {
	return NewApp(context.Background(), "development", auth, signer)
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(m *Model, key tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: key})
	return cmd
}

// runs a command and feeds its messages back, as the program loop would
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				deliver(t, m, c)
			}
		}
		return
	}

	m.Update(msg)
}

func TestProtectedRoute_RedirectsAndReturns(t *testing.T) {
	auth := newFakeAuth(session.Unauthenticated(nil))
	signer := &fakeSigner{result: &identity.SignInResult{User: ada, Token: "tok", SessionID: "sid"}}
	m := newModel(auth, signer)

	m.Update(NavigateMsg{To: StateProfile})
	require.Equal(t, StateSignIn, m.Screen())
	assert.Contains(t, m.View(), "sign in to continue")

	typeText(m, "ada@example.com")
	press(m, tea.KeyEnter)
	typeText(m, "secret")
	cmd := press(m, tea.KeyEnter)

	assert.True(t, m.signIn.submitting)
	deliver(t, m, cmd)

	assert.Equal(t, "ada@example.com", signer.got.Email)
	assert.Equal(t, "secret", signer.got.Password)
	assert.Equal(t, sessionstore.Credentials{SessionID: "sid", Token: "tok"}, auth.creds)

	assert.Equal(t, StateProfile, m.Screen())
	assert.Nil(t, m.returnTo)
	assert.Contains(t, m.View(), "Ada")
}

func TestProtectedRoute_WaitsWhileLoading(t *testing.T) {
	auth := newFakeAuth(session.Unknown())
	m := newModel(auth, &fakeSigner{})

	m.Update(NavigateMsg{To: StateProfile})
	assert.Equal(t, StateWelcome, m.Screen())
	require.NotNil(t, m.pending)

	auth.set(session.Authenticated(ada))
	m.Update(AuthStateMsg{State: session.Authenticated(ada)})

	assert.Equal(t, StateProfile, m.Screen())
	assert.Nil(t, m.pending)
}

func TestProtectedRoute_LoadingSettlesSignedOut(t *testing.T) {
	auth := newFakeAuth(session.Unknown())
	m := newModel(auth, &fakeSigner{})

	m.Update(NavigateMsg{To: StateProfile})

	auth.set(session.Unauthenticated(nil))
	m.Update(AuthStateMsg{State: session.Unauthenticated(nil)})

	assert.Equal(t, StateSignIn, m.Screen())
	require.NotNil(t, m.returnTo)
	assert.Equal(t, StateProfile, *m.returnTo)
}

func TestProfile_SignedOutElsewhereRedirects(t *testing.T) {
	auth := newFakeAuth(session.Authenticated(ada))
	m := newModel(auth, &fakeSigner{})

	m.Update(NavigateMsg{To: StateProfile})
	require.Equal(t, StateProfile, m.Screen())

	auth.set(session.Unauthenticated(nil))
	m.Update(AuthStateMsg{State: session.Unauthenticated(nil)})

	assert.Equal(t, StateSignIn, m.Screen())
}

func TestSignIn_Failure(t *testing.T) {
	auth := newFakeAuth(session.Unauthenticated(nil))
	signer := &fakeSigner{err: identity.ErrUnauthenticated}
	m := newModel(auth, signer)

	m.Update(NavigateMsg{To: StateSignIn})
	typeText(m, "ada@example.com")
	press(m, tea.KeyTab)
	typeText(m, "wrong")
	deliver(t, m, press(m, tea.KeyEnter))

	assert.Equal(t, StateSignIn, m.Screen())
	assert.False(t, m.signIn.submitting)
	assert.ErrorIs(t, m.signIn.err, identity.ErrUnauthenticated)
	assert.False(t, auth.State().IsAuthenticated())
}

func TestSignIn_RequiresBothFields(t *testing.T) {
	m := newModel(newFakeAuth(session.Unauthenticated(nil)), &fakeSigner{})

	m.Update(NavigateMsg{To: StateSignIn})
	press(m, tea.KeyTab)
	cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.signIn.err, errMissingCredentials)
}

func TestSignIn_AlreadyAuthenticated(t *testing.T) {
	m := newModel(newFakeAuth(session.Authenticated(ada)), &fakeSigner{})

	m.Update(NavigateMsg{To: StateSignIn})

	assert.Equal(t, StateWelcome, m.Screen())
	assert.Contains(t, m.notice, "already signed in as Ada")
}

func TestWelcome_Commands(t *testing.T) {
	auth := newFakeAuth(session.Authenticated(ada))
	m := newModel(auth, &fakeSigner{})

	typeText(m, "status")
	deliver(t, m, press(m, tea.KeyEnter))
	assert.Equal(t, "signed in as Ada <ada@example.com>, plan premium", m.notice)

	typeText(m, "logout")
	request := press(m, tea.KeyEnter)
	require.NotNil(t, request)
	_, logoutCmd := m.Update(request())
	deliver(t, m, logoutCmd)
	assert.Equal(t, 1, auth.logouts)
	assert.Equal(t, "signed out", m.notice)

	typeText(m, "dance")
	deliver(t, m, press(m, tea.KeyEnter))
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "unknown command: dance")
}

func TestCtrlC(t *testing.T) {
	m := newModel(newFakeAuth(session.Unauthenticated(nil)), &fakeSigner{})

	m.Update(NavigateMsg{To: StateSignIn})
	press(m, tea.KeyCtrlC)
	assert.Equal(t, StateWelcome, m.Screen())

	cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAuthUpdatesAreConsumed(t *testing.T) {
	auth := newFakeAuth(session.Unknown())
	m := newModel(auth, &fakeSigner{})

	auth.updates <- session.Authenticated(ada)
	msg := waitForState(m.updates)()

	require.IsType(t, AuthStateMsg{}, msg)
	m.Update(msg)
	assert.True(t, m.authState.IsAuthenticated())
	assert.Contains(t, m.View(), "signed in as Ada")

	close(auth.updates)
	assert.IsType(t, authClosedMsg{}, waitForState(m.updates)())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "checking session...", Describe(session.Unknown()))
	assert.Equal(t, "signed out", Describe(session.Unauthenticated(errors.New("offline"))))

	noPlan := &session.User{ID: "u-2", Username: "grace", Email: "grace@example.com"}
	assert.Equal(t, "signed in as grace <grace@example.com>, plan free", Describe(session.Authenticated(noPlan)))
}

func TestProfileMarkdown(t *testing.T) {
	md := profileMarkdown(&session.User{ID: "u-3", DisplayName: "Linus", Email: "l@example.com"})

	assert.Contains(t, md, "# Linus")
	assert.Contains(t, md, "| plan | free |")
	assert.Contains(t, md, "| verified | no |")
	assert.Contains(t, md, "upgrade to premium")
}

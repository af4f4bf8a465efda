package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/biolink/client/internal/identity"
	"codeberg.org/biolink/client/internal/session"
	"codeberg.org/biolink/client/internal/sessionstore"
	tea "github.com/charmbracelet/bubbletea"
)

const signInTimeout = 30 * time.Second

// waits for the next published auth state
func waitForState(updates <-chan session.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return authClosedMsg{}
		}
		return AuthStateMsg{State: state}
	}
}

func checkAuth(ctx context.Context, auth AuthController) tea.Cmd {
	return func() tea.Msg {
		auth.CheckAuthStatus(ctx)
		return nil
	}
}

func refreshAuth(ctx context.Context, auth AuthController) tea.Cmd {
	return func() tea.Msg {
		state := auth.RefreshAuth(ctx)
		return NoticeMsg{text: "refreshed: " + state.Status().String()}
	}
}

func logout(ctx context.Context, auth AuthController) tea.Cmd {
	return func() tea.Msg {
		auth.Logout(ctx)
		return NoticeMsg{text: "signed out"}
	}
}

// exchanges the credentials, then hands the session to the controller
func signIn(ctx context.Context, signer SignInClient, auth AuthController, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, signInTimeout)
		defer cancel()

		result, err := signer.SignIn(ctx, identity.SignInRequest{
			Email:    strings.TrimSpace(email),
			Password: password,
		})
		if err != nil {
			return SignInResultMsg{err: fmt.Errorf("sign-in failed: %w", err)}
		}

		err = auth.Login(ctx, result.User, sessionstore.Credentials{
			SessionID: result.SessionID,
			Token:     result.Token,
		})
		if err != nil {
			return SignInResultMsg{err: fmt.Errorf("sign-in failed: %w", err)}
		}

		return SignInResultMsg{}
	}
}

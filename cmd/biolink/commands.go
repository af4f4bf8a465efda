package main

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/biolink/client/internal/config"
	"codeberg.org/biolink/client/internal/identity"
	"codeberg.org/biolink/client/internal/sessionstore"
	"codeberg.org/biolink/client/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// prints the settled state. A cached answer is revalidated before returning
// so the next run starts from fresh data.
func runStatus(ctx context.Context, app *App, out io.Writer) error {
	state := app.auth.CheckAuthStatus(ctx)
	fmt.Fprintln(out, tui.Describe(state)) //nolint:errcheck
	app.auth.Wait()
	return nil
}

func runLogin(ctx context.Context, app *App, flags config.LoginFlags, out io.Writer) error {
	result, err := app.identity.SignIn(ctx, identity.SignInRequest{
		Email:       flags.Email,
		Password:    flags.Password,
		DisplayName: flags.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	err = app.auth.Login(ctx, result.User, sessionstore.Credentials{
		SessionID: result.SessionID,
		Token:     result.Token,
	})
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	fmt.Fprintln(out, tui.Describe(app.auth.State())) //nolint:errcheck
	return nil
}

func runLogout(ctx context.Context, app *App, out io.Writer) error {
	app.auth.Logout(ctx)
	fmt.Fprintln(out, tui.Describe(app.auth.State())) //nolint:errcheck
	return nil
}

func runRefresh(ctx context.Context, app *App, out io.Writer) error {
	state := app.auth.RefreshAuth(ctx)
	fmt.Fprintln(out, tui.Describe(state)) //nolint:errcheck
	return nil
}

func runTUI(ctx context.Context, app *App) error {
	model := tui.NewApp(ctx, app.cfg.Environment, app.auth, app.identity)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running biolink: %w", err)
	}

	return nil
}

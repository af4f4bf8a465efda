package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"codeberg.org/biolink/client/internal/config"
	"codeberg.org/biolink/client/internal/logger"
	"codeberg.org/biolink/client/internal/telemetry"
	"github.com/charmbracelet/x/term"
)

const usage = `usage: biolink [command]

commands:
  tui                          interactive terminal client (default on a terminal)
  status                       print the current session
  login -email E -password P   sign in
  logout                       sign out and forget this device
  refresh                      re-check the session with the server
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err) //nolint:errcheck
		return 1
	}

	command := "tui"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	} else if !term.IsTerminal(os.Stdout.Fd()) {
		command = "status"
	}

	// bubbletea owns the terminal, so the TUI logs to a file
	closeLog := func() {}
	if command == "tui" {
		closeLog = logToFile(cfg)
	} else {
		logger.Configure(cfg.Environment, stderr)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to initialize telemetry, continuing without it")
		shutdownTelemetry = func(context.Context) error { return nil }
	} else if cfg.Telemetry.Enabled {
		logger.EnableOTel(cfg.Telemetry.ServiceName)
	}
	defer func() {
		if err := shutdownTelemetry(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorErr(err, "failed to flush telemetry")
		}
	}()

	return dispatch(ctx, cfg, command, args, stdout, stderr)
}

func dispatch(ctx context.Context, cfg *config.Config, command string, args []string, stdout, stderr io.Writer) int {
	var login config.LoginFlags

	switch command {
	case "tui", "status", "logout", "refresh":
		if err := config.ParseNoFlags(command, args, stderr); err != nil {
			fmt.Fprintln(stderr, err) //nolint:errcheck
			return 2
		}
	case "login":
		flags, err := config.ParseLoginFlags(args, stderr)
		if err != nil {
			fmt.Fprintln(stderr, err) //nolint:errcheck
			return 2
		}
		login = flags
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage) //nolint:errcheck
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n%s", command, usage) //nolint:errcheck
		return 2
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck
		return 1
	}
	defer app.Close()

	switch command {
	case "status":
		err = runStatus(ctx, app, stdout)
	case "login":
		err = runLogin(ctx, app, login, stdout)
	case "logout":
		err = runLogout(ctx, app, stdout)
	case "refresh":
		err = runRefresh(ctx, app, stdout)
	default:
		err = runTUI(ctx, app)
	}

	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck
		return 1
	}

	return 0
}

// points the logger at the configured log file, or discards logs when it cannot be opened
func logToFile(cfg *config.Config) func() {
	if cfg.LogFile == "" {
		logger.Configure(cfg.Environment, io.Discard)
		return func() {}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
		logger.Configure(cfg.Environment, io.Discard)
		return func() {}
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // path comes from config
	if err != nil {
		logger.Configure(cfg.Environment, io.Discard)
		return func() {}
	}

	logger.Configure(cfg.Environment, f)
	return func() { f.Close() } //nolint:errcheck,gosec // best-effort close on exit
}

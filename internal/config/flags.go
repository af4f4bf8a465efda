package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// parses CLI flags for the login subcommand
func ParseLoginFlags(args []string, output io.Writer) (LoginFlags, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(output)

	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	displayName := fs.String("name", "", "display name used when the account is created")

	if err := fs.Parse(args); err != nil {
		return LoginFlags{}, err
	}

	flags := LoginFlags{
		Email:       strings.TrimSpace(*email),
		Password:    *password,
		DisplayName: strings.TrimSpace(*displayName),
	}

	if flags.Email == "" || flags.Password == "" {
		return LoginFlags{}, fmt.Errorf("login requires -email and -password")
	}

	return flags, nil
}

// parses a subcommand that takes no flags, rejecting stray arguments
func ParseNoFlags(name string, args []string, output io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("%s takes no arguments, got %q", name, strings.Join(fs.Args(), " "))
	}

	return nil
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/valutatrade/valutatrade/renderer"
	"golang.org/x/term"
)

// readPassword returns password, or reads it from the terminal when empty.
func readPassword(password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("missing -password")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("cannot read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

type registerCmd struct {
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a user account" }
func (*registerCmd) Usage() string {
	return `trade register -username <name> [-password <password>]

Creates a user and its portfolio, funded with 10000 USD.
The password is read from the terminal when -password is omitted.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "Unique user name")
	f.StringVar(&c.password, "password", "", "Password, at least 4 characters")
}

func (c *registerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" {
		fmt.Fprintln(os.Stderr, "Error: -username is required")
		return subcommands.ExitUsageError
	}
	return withApp("register", func(a *app) error {
		password, err := readPassword(c.password)
		if err != nil {
			return err
		}
		user, err := a.engine.Register(c.username, password)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Registered(user))
		return nil
	})
}

type loginCmd struct {
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "open a session" }
func (*loginCmd) Usage() string {
	return `trade login -username <name> [-password <password>]

Opens a session used by the trading commands until 'trade logout'.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "User name")
	f.StringVar(&c.password, "password", "", "Password")
}

func (c *loginCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" {
		fmt.Fprintln(os.Stderr, "Error: -username is required")
		return subcommands.ExitUsageError
	}
	return withApp("login", func(a *app) error {
		password, err := readPassword(c.password)
		if err != nil {
			return err
		}
		user, err := a.engine.Login(c.username, password)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %q\n", user.Username)
		return nil
	})
}

type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "close the session" }
func (*logoutCmd) Usage() string {
	return `trade logout

Closes the current session.
`
}

func (c *logoutCmd) SetFlags(f *flag.FlagSet) {}

func (c *logoutCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp("logout", func(a *app) error {
		if err := a.engine.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	})
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/naveenspark/finadmin/internal/session"
	"github.com/naveenspark/finadmin/pkg/client"
)

var (
	errNotSignedIn   = errors.New("no valid session: run finadmin login")
	errWrongPassword = errors.New("wrong password")
)

// requireSession verifies the stored token once.
func requireSession(ctx context.Context, a *app) error {
	if a.gate.Start(ctx, a.client) != session.StateAuthenticated {
		return errNotSignedIn
	}
	return nil
}

func newLoginCmd(env *environment) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the admin password",
		Long:  "Exchange the admin password for a token and save it. Without --password the password is prompted for on a terminal, or read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.with(func(a *app) error {
				pw := password
				if !cmd.Flags().Changed("password") {
					var err error
					if pw, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
						return err
					}
				}

				if err := a.gate.Login(cmd.Context(), a.client, pw); err != nil {
					switch {
					case errors.Is(err, session.ErrEmptyPassword):
						return session.ErrEmptyPassword
					case client.IsStatus(err, http.StatusUnauthorized):
						return errWrongPassword
					}
					return err
				}

				where := "for this process only"
				if fs, ok := a.store.(*session.FileStore); ok {
					where = "to " + fs.Path()
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Signed in. Token saved %s.\n", where)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Admin password (visible in shell history; prefer the prompt)")

	return cmd
}

// readPassword prompts without echo on a terminal, otherwise reads one line.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.with(func(a *app) error {
				if err := a.gate.Logout(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
				return err
			})
		},
	}
}

func newVerifyCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the saved token is still accepted",
		Long:  "Verify the saved token against the admin API. A rejected token is removed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.with(func(a *app) error {
				if err := requireSession(cmd.Context(), a); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Token is valid.")
				return err
			})
		},
	}
}

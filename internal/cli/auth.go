package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pythia-cli/internal/log"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sessions, _, err := app.deps()
			if err != nil {
				return err
			}

			if email == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Email: ")
				r := bufio.NewReader(cmd.InOrStdin())
				line, err := r.ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(line)
			}
			if email == "" {
				return fmt.Errorf("email is required")
			}

			password := os.Getenv("PYTHIA_PASSWORD")
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				b, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				password = string(b)
			}

			sess, err := sessions.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			log.Debug("signed in", "userId", sess.UserID)
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when omitted)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sessions, _, err := app.deps()
			if err != nil {
				return err
			}
			if err := sessions.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

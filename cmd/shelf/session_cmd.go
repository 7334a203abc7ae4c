package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/shelf/internal/app"
	"github.com/five82/shelf/internal/library"
)

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and persist the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(flags.options(true))
			if err != nil {
				return err
			}
			defer env.Close()
			if !env.Config.RememberSession {
				return errors.New("remember_session is disabled; enable it to sign in from the command line")
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			email := env.Prefs.LastEmail
			if len(args) == 1 {
				email = args[0]
			}
			if strings.TrimSpace(email) == "" || len(args) == 0 && !passwordStdin {
				email, err = prompt(in, out, "Email", email)
				if err != nil {
					return err
				}
			}
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("email is required")
			}

			password, err := readPassword(in, out, passwordStdin)
			if err != nil {
				return err
			}

			snap, err := env.SignIn(cmd.Context(), email, password)
			if err != nil {
				return errors.New(library.Message(err, "Invalid email or password"))
			}
			who := email
			if snap.HasUser && snap.User.Email != "" {
				who = snap.User.Email
			}
			fmt.Fprintf(out, "Signed in as %s\n", who)
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(flags.options(true))
			if err != nil {
				return err
			}
			defer env.Close()
			env.Session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(flags *rootFlags) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(flags.options(true))
			if err != nil {
				return err
			}
			defer env.Close()

			snap := env.Session.Snapshot()
			if !snap.IsAuthenticated() {
				return errors.New("not signed in")
			}
			user := snap.User
			if remote || !snap.HasUser {
				user, err = env.Client.Me(cmd.Context())
				if err != nil {
					return fmt.Errorf("fetch profile: %s", library.Message(err, err.Error()))
				}
				env.Session.SetUser(user)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (id %d)\n", user.Email, user.ID)
			if user.IsSuperuser {
				fmt.Fprintln(out, "role: superuser")
			}
			fmt.Fprintf(out, "api: %s\n", env.Client.BaseURL())
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "refresh the profile from the server")
	return cmd
}

func prompt(in *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func readPassword(in *bufio.Reader, out io.Writer, fromStdin bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if !fromStdin && term.IsTerminal(fd) {
		fmt.Fprint(out, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

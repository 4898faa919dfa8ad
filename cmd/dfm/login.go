package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dotfiles-manager/dfm/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginSession  string
	loginReturnTo string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with GitHub",
	Long: `Opens the GitHub sign-in page of the server in a browser. Once signed in,
copy the value of the session cookie from the browser and paste it at the prompt.

Examples:
  dfm login
  dfm login --return-to /templates
  dfm login --session <cookie-value>`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the server",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginSession, "session", "", "Session cookie value (skip the browser)")
	loginCmd.Flags().StringVar(&loginReturnTo, "return-to", "", "Page to revisit after signing in")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	cookie := loginSession
	if cookie == "" {
		if err := a.session.Login(ctx, loginReturnTo); err != nil {
			return fmt.Errorf("starting sign-in: %w", err)
		}
		cookie, err = readSecret("Session cookie: ")
		if err != nil {
			return fmt.Errorf("reading session cookie: %w", err)
		}
	}
	if cookie == "" {
		return fmt.Errorf("no session cookie given")
	}

	user, err := a.session.Complete(ctx, cookie)
	if errors.Is(err, session.ErrSessionRejected) {
		return fmt.Errorf("login failed: the server did not accept the session cookie")
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Logged in to %s as %s\n", a.cfg.API.URL, user.Username)

	returnTo, err := a.session.ConsumeReturnTo()
	if err != nil {
		a.logger.Warn("reading return path failed", "error", err)
	} else if returnTo != "" {
		fmt.Fprintf(os.Stderr, "Continue at %s%s\n", strings.TrimRight(a.cfg.Site.URL, "/"), returnTo)
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if err := a.session.Logout(context.Background()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Logged out of %s\n", a.cfg.API.URL)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	user := a.session.Identity(context.Background())
	if user == nil {
		fmt.Fprintln(os.Stderr, "Not signed in. Run 'dfm login' to sign in.")
		return errReported
	}

	out := cmd.OutOrStdout()
	w := newTable(out)
	fmt.Fprintf(w, "Username:\t%s\n", user.Username)
	if user.Name != "" {
		fmt.Fprintf(w, "Name:\t%s\n", user.Name)
	}
	if user.Email != "" {
		fmt.Fprintf(w, "Email:\t%s\n", user.Email)
	}
	if user.Company != "" {
		fmt.Fprintf(w, "Company:\t%s\n", user.Company)
	}
	if user.Location != "" {
		fmt.Fprintf(w, "Location:\t%s\n", user.Location)
	}
	fmt.Fprintf(w, "Favorites:\t%d\n", len(user.Favorites))
	fmt.Fprintf(w, "Server:\t%s\n", a.cfg.API.URL)
	return w.Flush()
}

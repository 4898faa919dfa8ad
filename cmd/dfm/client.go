package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/config"
	"github.com/dotfiles-manager/dfm/internal/credstore"
	"github.com/dotfiles-manager/dfm/internal/logger"
	"github.com/dotfiles-manager/dfm/internal/notify"
	"github.com/dotfiles-manager/dfm/internal/session"
	"github.com/dotfiles-manager/dfm/internal/view"
	"golang.org/x/term"
)

// errReported means the failure was already shown to the user as a notification.
var errReported = errors.New("already reported")

// app bundles everything a command needs to talk to the backend.
type app struct {
	cfg      *config.Config
	dir      string
	logger   *slog.Logger
	api      *apiclient.Client
	store    *credstore.Store
	session  *session.Manager
	notifier notify.Notifier
	confirm  view.Confirmer
}

// newApp loads config and stored credentials and returns a client signed in
// with the stored session, if any.
func newApp() (*app, error) {
	dir, err := credstore.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if apiURLFlag != "" {
		cfg.API.URL = strings.TrimRight(apiURLFlag, "/")
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	log := logger.Init(cfg.Log.Format, cfg.Log.Level)

	store := credstore.Open(dir, !noKeyring)
	creds, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	cookieName := cfg.API.SessionCookie
	opts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(log),
	}
	if creds.Session != "" && creds.ServerURL == cfg.API.URL {
		if creds.CookieName != "" {
			cookieName = creds.CookieName
		}
		opts = append(opts, apiclient.WithSessionCookie(cookieName, creds.Session))
	}
	api := apiclient.New(cfg.API.URL, opts...)

	nav := session.Browser{Out: os.Stderr, Open: !cfg.Output.NoBrowser}
	mgr := session.New(api, store, nav, session.Config{
		ServerURL:  cfg.API.URL,
		SiteURL:    cfg.Site.URL,
		CookieName: cookieName,
		Logger:     log,
	})

	return &app{
		cfg:      cfg,
		dir:      dir,
		logger:   log,
		api:      api,
		store:    store,
		session:  mgr,
		notifier: notify.NewWriter(os.Stderr, log),
		confirm:  view.ConfirmFunc(promptConfirm),
	}, nil
}

// promptConfirm asks a y/N question on the terminal. Without a terminal the
// answer is no unless --yes was given.
func promptConfirm(prompt string) bool {
	if assumeYes {
		return true
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "%s\nRefusing without a terminal; pass --yes to confirm.\n", prompt)
		return false
	}
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	return readYes(os.Stdin)
}

func readYes(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// checkState turns a failed view load into errReported.
func checkState(s view.State) error {
	if s == view.Failed {
		return errReported
	}
	return nil
}

// reported turns a false action result into errReported.
func reported(ok bool) error {
	if !ok {
		return errReported
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return ""
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// formatTimestamp parses an RFC 3339 timestamp and returns a human-friendly format.
func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}

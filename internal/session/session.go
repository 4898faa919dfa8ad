// Package session owns the signed-in identity for the whole process.
//
// Views read the identity through Manager.Identity; concurrent readers share a
// single in-flight fetch. The cached identity is dropped on sign-in and
// sign-out, and a failed fetch is never cached.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/credstore"
	"golang.org/x/sync/singleflight"
)

// ErrSessionRejected is returned by Complete when the server does not accept the session.
var ErrSessionRejected = errors.New("session was not accepted by the server")

// API is the subset of the API client the session needs.
type API interface {
	FetchIdentity(ctx context.Context) (*apiclient.User, error)
	LoginURL() string
	Logout(ctx context.Context) error
	SetSessionCookie(name, value string)
	ClearSessionCookie()
}

// Store persists credentials between runs.
type Store interface {
	Load() (*credstore.Credentials, error)
	Save(creds *credstore.Credentials) error
}

// Manager is the process-wide session.
type Manager struct {
	api        API
	store      Store
	nav        Navigator
	serverURL  string
	siteURL    string
	cookieName string
	logger     *slog.Logger

	group singleflight.Group

	mu     sync.Mutex
	user   *apiclient.User
	cached bool
	// gen advances on every Invalidate; a lookup started under an older
	// generation must not fill the cache.
	gen uint64
}

// Config configures a Manager.
type Config struct {
	ServerURL  string
	SiteURL    string
	CookieName string
	Logger     *slog.Logger
}

// New creates a Manager.
func New(api API, store Store, nav Navigator, cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:        api,
		store:      store,
		nav:        nav,
		serverURL:  cfg.ServerURL,
		siteURL:    cfg.SiteURL,
		cookieName: cfg.CookieName,
		logger:     logger,
	}
}

// Identity returns the signed-in user, or nil when signed out or the lookup failed.
func (m *Manager) Identity(ctx context.Context) *apiclient.User {
	m.mu.Lock()
	if m.cached {
		u := m.user
		m.mu.Unlock()
		return u
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do("identity", func() (any, error) {
		m.mu.Lock()
		gen := m.gen
		m.mu.Unlock()

		u, err := m.api.FetchIdentity(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		if m.gen == gen {
			m.user, m.cached = u, true
		}
		m.mu.Unlock()
		return u, nil
	})
	if err != nil {
		m.logger.Debug("identity lookup failed", "error", err)
		return nil
	}
	return v.(*apiclient.User)
}

// Refresh drops the cached identity and fetches it again.
func (m *Manager) Refresh(ctx context.Context) *apiclient.User {
	m.Invalidate()
	return m.Identity(ctx)
}

// Invalidate drops the cached identity.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.user, m.cached = nil, false
	m.gen++
	m.mu.Unlock()
	m.group.Forget("identity")
}

// Login starts the GitHub sign-in in the browser. A non-empty returnTo is kept
// for the callback to consult.
func (m *Manager) Login(ctx context.Context, returnTo string) error {
	if returnTo != "" {
		creds, err := m.store.Load()
		if err != nil {
			return err
		}
		creds.ServerURL = m.serverURL
		creds.ReturnTo = returnTo
		if err := m.store.Save(creds); err != nil {
			return err
		}
	}

	m.Invalidate()
	return m.nav.Navigate(m.api.LoginURL())
}

// Complete installs the session cookie obtained from the browser, verifies it and
// stores it on success.
func (m *Manager) Complete(ctx context.Context, cookie string) (*apiclient.User, error) {
	m.api.SetSessionCookie(m.cookieName, cookie)
	user := m.Refresh(ctx)
	if user == nil {
		m.api.ClearSessionCookie()
		m.Invalidate()
		return nil, ErrSessionRejected
	}

	creds, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	creds.ServerURL = m.serverURL
	creds.CookieName = m.cookieName
	creds.Session = cookie
	creds.Username = user.Username
	if err := m.store.Save(creds); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	m.logger.Info("signed in", "username", user.Username, "server", m.serverURL)
	return user, nil
}

// ConsumeReturnTo returns the stored return path and forgets it.
func (m *Manager) ConsumeReturnTo() (string, error) {
	creds, err := m.store.Load()
	if err != nil {
		return "", err
	}
	returnTo := creds.ReturnTo
	if returnTo == "" {
		return "", nil
	}
	creds.ReturnTo = ""
	if err := m.store.Save(creds); err != nil {
		return "", err
	}
	return returnTo, nil
}

// Logout ends the server session. Only on success is the stored session cleared
// and the browser sent to the site root.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		return err
	}

	m.api.ClearSessionCookie()
	m.Invalidate()

	creds, err := m.store.Load()
	if err != nil {
		return err
	}
	creds.Session = ""
	creds.Username = ""
	if err := m.store.Save(creds); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	return m.nav.Navigate(m.siteURL)
}

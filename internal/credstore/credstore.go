// Package credstore persists the sign-in session for the dfm CLI.
//
// The session cookie goes to the OS keyring when one is available; everything
// else (server URL, username, pending OAuth return path) lives in
// credentials.yaml in the config directory.
package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	keyringService = "dfm"
	fileName       = "credentials.yaml"
)

// Credentials is the stored sign-in state.
type Credentials struct {
	ServerURL  string `yaml:"server_url,omitempty"`
	Username   string `yaml:"username,omitempty"`
	CookieName string `yaml:"cookie_name,omitempty"`
	// Session is written to the file only when the keyring is unavailable.
	Session string `yaml:"session,omitempty"`
	// ReturnTo is the page to revisit once OAuth sign-in completes.
	ReturnTo string `yaml:"return_to,omitempty"`
}

// Store reads and writes Credentials under a directory.
type Store struct {
	dir        string
	useKeyring bool
}

// DefaultDir returns ~/.config/dfm/ or the platform equivalent.
// Can be overridden with DFM_CONFIG_DIR.
func DefaultDir() (string, error) {
	if dir := os.Getenv("DFM_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "dfm"), nil
}

// Open returns a Store rooted at dir. When useKeyring is false the session is
// kept in the credentials file.
func Open(dir string, useKeyring bool) *Store {
	return &Store{dir: dir, useKeyring: useKeyring}
}

// Path returns the path of the credentials file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Load reads stored credentials. Returns empty credentials if none exist.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Session == "" && s.useKeyring && creds.ServerURL != "" {
		// An unavailable keyring reads as no stored session.
		if secret, err := keyring.Get(keyringService, creds.ServerURL); err == nil {
			creds.Session = secret
		}
	}
	return &creds, nil
}

// Save writes credentials. The session goes to the keyring when possible and
// falls back to the file otherwise.
func (s *Store) Save(creds *Credentials) error {
	onDisk := *creds
	if s.useKeyring && creds.ServerURL != "" {
		if creds.Session == "" {
			// Best effort: a keyring that cannot be reached holds nothing to clear.
			_ = keyring.Delete(keyringService, creds.ServerURL)
		} else if err := keyring.Set(keyringService, creds.ServerURL, creds.Session); err == nil {
			onDisk.Session = ""
		}
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(&onDisk)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoadMissingFile(t *testing.T) {
	s := Open(t.TempDir(), false)
	creds, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *creds != (Credentials{}) {
		t.Fatalf("expected empty credentials, got %+v", creds)
	}
}

func TestFileRoundTrip(t *testing.T) {
	s := Open(t.TempDir(), false)
	in := &Credentials{
		ServerURL: "https://api.example.com",
		Username:  "octo",
		Session:   "cookie-value",
		ReturnTo:  "/templates",
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestKeyringKeepsSessionOffDisk(t *testing.T) {
	keyring.MockInit()
	s := Open(t.TempDir(), true)

	in := &Credentials{ServerURL: "https://api.example.com", Username: "octo", Session: "secret"}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("session leaked to file:\n%s", data)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Session != "secret" {
		t.Fatalf("expected session from keyring, got %q", out.Session)
	}

	out.Session = ""
	if err := s.Save(out); err != nil {
		t.Fatalf("Save cleared: %v", err)
	}
	if _, err := keyring.Get(keyringService, "https://api.example.com"); err != keyring.ErrNotFound {
		t.Fatalf("expected keyring entry removed, got %v", err)
	}
}

func TestUnavailableKeyringFallsBackToFile(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(keyring.MockInit)
	s := Open(t.TempDir(), true)

	// A pending return path is saved before any session exists.
	if err := s.Save(&Credentials{ServerURL: "https://api.example.com", ReturnTo: "/x"}); err != nil {
		t.Fatalf("Save return path: %v", err)
	}

	if err := s.Save(&Credentials{ServerURL: "https://api.example.com", Session: "abc"}); err != nil {
		t.Fatalf("Save session: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Session != "abc" {
		t.Fatalf("expected session from file, got %q", out.Session)
	}

	out.Session = ""
	if err := s.Save(out); err != nil {
		t.Fatalf("Save cleared: %v", err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "abc") {
		t.Fatalf("cleared session still on disk:\n%s", data)
	}
}

func TestSaveCreatesPrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dfm")
	s := Open(dir, false)
	if err := s.Save(&Credentials{Username: "octo"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Fatalf("expected 0700 directory, got %o", perm)
	}
}

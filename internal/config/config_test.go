package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DFM_API_URL", "PUBLIC_API_URL", "DFM_API_TIMEOUT", "DFM_TIMEOUT", "DFM_LOG_LEVEL", "DFM_SITE_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "session", cfg.API.SessionCookie)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Output.NoBrowser)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	data := "api:\n  url: https://dotfiles.example.com/\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://dotfiles.example.com", cfg.API.URL)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("DFM_LOG_LEVEL", "error")
	t.Setenv("DFM_TIMEOUT", "5s")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
}

func TestPublicAPIURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBLIC_API_URL", "https://public.example.com")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://public.example.com", cfg.API.URL)

	t.Setenv("DFM_API_URL", "https://dfm.example.com")
	cfg, err = Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://dfm.example.com", cfg.API.URL)
}

func TestSetPreservesOtherKeys(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "nested")

	require.NoError(t, Set(dir, "api.url", "https://a.example.com"))
	require.NoError(t, Set(dir, "output.no_browser", "true"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com", cfg.API.URL)
	assert.True(t, cfg.Output.NoBrowser)
}

func TestSetRejectsUnknownKey(t *testing.T) {
	err := Set(t.TempDir(), "api.nope", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestSetRejectsBadTimeout(t *testing.T) {
	assert.Error(t, Set(t.TempDir(), "api.timeout", "soon"))
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "config.yaml"

// Config holds all client configuration
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Site   SiteConfig   `mapstructure:"site"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SessionCookie string        `mapstructure:"session_cookie"` // Name of the backend's session cookie
}

// SiteConfig holds the web front end location
type SiteConfig struct {
	URL string `mapstructure:"url"` // Where sign-out sends the browser
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// OutputConfig holds local output settings
type OutputConfig struct {
	DownloadDir string `mapstructure:"download_dir"`
	NoBrowser   bool   `mapstructure:"no_browser"` // Print sign-in URLs instead of opening them
}

var defaults = map[string]any{
	"api.url":             "http://localhost:8080",
	"api.timeout":         "30s",
	"api.session_cookie":  "session",
	"site.url":            "http://localhost:4321",
	"log.format":          "text",
	"log.level":           "warn",
	"output.download_dir": ".",
	"output.no_browser":   false,
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	return v
}

// Load reads configuration from dir/config.yaml and environment variables.
// Environment variables use the DFM_ prefix (DFM_API_URL, DFM_LOG_LEVEL, ...).
// PUBLIC_API_URL is honoured as a fallback for the API URL.
func Load(dir string) (*Config, error) {
	v := newViper(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	// Environment variables override
	v.SetEnvPrefix("DFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.url", "DFM_API_URL", "PUBLIC_API_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("api.timeout", "DFM_API_TIMEOUT", "DFM_TIMEOUT"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.API.URL = strings.TrimRight(cfg.API.URL, "/")

	return &cfg, nil
}

// Set writes one key to dir/config.yaml, keeping the other keys in the file.
func Set(dir, key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if key == "api.timeout" {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	path := filepath.Join(dir, FileName)
	if err := readFile(v, path); err != nil {
		return err
	}

	v.Set(key, value)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func readFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()
	if err := v.ReadConfig(f); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

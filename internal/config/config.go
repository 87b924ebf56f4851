// Package config loads sailboard settings from an optional YAML file and
// the environment.
//
// Values are resolved in order: built-in defaults, the config file, then
// SAIL_* environment variables. The file is optional; credentials are
// usually supplied through the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the configuration directory name.
	AppName = "sailboard"

	// ConfigFile is the default config filename inside the config directory.
	ConfigFile = "config.yaml"

	// TokenFile is the default cached OAuth token filename.
	TokenFile = "token.json"
)

// Environment variable names.
const (
	EnvBaseURL      = "SAIL_BASE_URL"
	EnvClientID     = "SAIL_CLIENT_ID"
	EnvClientSecret = "SAIL_CLIENT_SECRET"
	EnvTokenURL     = "SAIL_TOKEN_URL"
)

// ErrMissingCredentials is returned when the tenant URL or client
// credentials are not configured.
var ErrMissingCredentials = errors.New("missing SailPoint environment variables")

// Config holds all sailboard settings.
type Config struct {
	// BaseURL is the tenant API root, e.g. https://acme.api.identitynow.com.
	BaseURL string `yaml:"base_url"`
	// ClientID and ClientSecret are a personal access token pair.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// TokenURL overrides the OAuth token endpoint. Defaults to <base_url>/oauth/token.
	TokenURL string `yaml:"token_url,omitempty"`
	// TokenCache is where the access token is cached between runs. Empty disables caching.
	TokenCache string `yaml:"token_cache,omitempty"`
	// Timeout bounds each API request.
	Timeout time.Duration `yaml:"timeout"`

	Fetch  FetchConfig  `yaml:"fetch"`
	View   ViewConfig   `yaml:"view"`
	Daemon DaemonConfig `yaml:"daemon"`
}

// FetchConfig controls the server-side page requested from the API.
type FetchConfig struct {
	// Limit is the number of task-status records requested.
	Limit int `yaml:"limit"`
	// Sorters is the API sort expression.
	Sorters string `yaml:"sorters"`
}

// ViewConfig controls local presentation.
type ViewConfig struct {
	// PageSize is the number of tasks per local page.
	PageSize int `yaml:"page_size"`
}

// DaemonConfig configures `sailboard serve`.
type DaemonConfig struct {
	Listen          string        `yaml:"listen"`
	DB              string        `yaml:"db"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	KeepSnapshots   int           `yaml:"keep_snapshots"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		TokenCache: filepath.Join(DefaultConfigDir(), TokenFile),
		Timeout:    10 * time.Second,
		Fetch: FetchConfig{
			Limit:   10,
			Sorters: "-created",
		},
		View: ViewConfig{
			PageSize: 10,
		},
		Daemon: DaemonConfig{
			Listen:          "127.0.0.1:7466",
			DB:              filepath.Join(homeDir, ".sailboard", "sailboard.db"),
			RefreshInterval: time.Minute,
			KeepSnapshots:   20,
		},
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/sailboard or ~/.config/sailboard.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigPath returns the config file path inside DefaultConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFile)
}

// Load reads the config file at path (a missing file is not an error),
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SAIL_* variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := getenv(EnvClientID); v != "" {
		c.ClientID = v
	}
	if v := getenv(EnvClientSecret); v != "" {
		c.ClientSecret = v
	}
	if v := getenv(EnvTokenURL); v != "" {
		c.TokenURL = v
	}
}

// Validate checks the settings that do not depend on credentials.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Fetch.Limit < 1 || c.Fetch.Limit > 250 {
		return fmt.Errorf("fetch.limit must be between 1 and 250")
	}
	if c.View.PageSize < 1 {
		return fmt.Errorf("view.page_size must be at least 1")
	}
	if c.Daemon.RefreshInterval < time.Second {
		return fmt.Errorf("daemon.refresh_interval must be at least 1s")
	}
	if c.Daemon.KeepSnapshots < 1 {
		return fmt.Errorf("daemon.keep_snapshots must be at least 1")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
		}
	}
	return nil
}

// RequireCredentials returns ErrMissingCredentials unless the base URL
// and client credentials are all set.
func (c *Config) RequireCredentials() error {
	if c.BaseURL == "" || c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// APIBase returns the base URL without a trailing slash.
func (c *Config) APIBase() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// ResolvedTokenURL returns TokenURL, or <base_url>/oauth/token.
func (c *Config) ResolvedTokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return c.APIBase() + "/oauth/token"
}

// SaveConfig writes cfg to path, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Build modes recognized across the toolkit. Development routes API calls
// through the local proxy; production targets the configured base URL.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// ClientConfig holds runtime configuration for the client toolkit.
type ClientConfig struct {
	Mode           string        `yaml:"mode"`
	APIBaseURL     string        `yaml:"api_base_url"`
	SDKScriptURL   string        `yaml:"sdk_script_url"`
	VerifyFlowURL  string        `yaml:"verify_flow_url"`
	LogLevel       string        `yaml:"log_level"`
	SessionFile    string        `yaml:"session_file"`
	SessionSecret  string        `yaml:"session_secret"`
	ProxyAddr      string        `yaml:"proxy_addr"`
	RequestTimeout time.Duration `yaml:"-"`

	// RequestTimeoutSeconds feeds RequestTimeout when set via file.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// IsDevelopment reports whether the toolkit runs in development mode.
func (c ClientConfig) IsDevelopment() bool {
	return c.Mode != ModeProduction
}

// Load constructs a ClientConfig from an optional YAML file overlaid by
// environment variables. A missing file is not an error.
func Load(path string) (ClientConfig, error) {
	cfg := defaults()

	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return ClientConfig{}, err
			}
			if cfg.RequestTimeoutSeconds > 0 {
				cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return ClientConfig{}, err
		}
	}

	cfg.Mode = GetString("APP_ENV", cfg.Mode)
	cfg.APIBaseURL = GetString("API_BASE_URL", cfg.APIBaseURL)
	cfg.SDKScriptURL = GetString("SDK_SCRIPT_URL", cfg.SDKScriptURL)
	cfg.VerifyFlowURL = GetString("VERIFY_FLOW_URL", cfg.VerifyFlowURL)
	cfg.LogLevel = GetString("LOG_LEVEL", cfg.LogLevel)
	cfg.SessionFile = GetString("SESSION_FILE", cfg.SessionFile)
	cfg.SessionSecret = GetString("SESSION_SECRET", cfg.SessionSecret)
	cfg.ProxyAddr = GetString("PROXY_ADDR", cfg.ProxyAddr)
	cfg.RequestTimeout = GetDuration("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeout)
	return cfg, nil
}

func defaults() ClientConfig {
	return ClientConfig{
		Mode:           ModeDevelopment,
		APIBaseURL:     "http://localhost:4000",
		SDKScriptURL:   "/sdk/idverify.js",
		VerifyFlowURL:  "/verify",
		SessionFile:    DefaultSessionPath(),
		SessionSecret:  "local-session-secret",
		ProxyAddr:      ":3000",
		RequestTimeout: 30 * time.Second,
	}
}

// DefaultConfigPath returns the per-user config file location, or "" when the
// user config dir cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "idverify", "config.yaml")
}

// DefaultSessionPath returns the per-user session file location.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "idverify", "session.bin")
}

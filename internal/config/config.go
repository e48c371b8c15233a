// Package config handles configuration for askwidget.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEndpointURL is used when no endpoint is configured anywhere.
const DefaultEndpointURL = "http://127.0.0.1:8000/chat"

// Environment variables recognised on top of the config file.
const (
	EnvEndpointURL    = "ASKWIDGET_ENDPOINT_URL"
	EnvRequestTimeout = "ASKWIDGET_REQUEST_TIMEOUT"
	EnvLogLevel       = "ASKWIDGET_LOG_LEVEL"
	EnvLogFile        = "ASKWIDGET_LOG_FILE"
	EnvTUITheme       = "ASKWIDGET_TUI_THEME"
	EnvServeBackend   = "ASKWIDGET_SERVE_BACKEND"
	EnvGeminiModel    = "ASKWIDGET_GEMINI_MODEL"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
)

// Reply backends of the development assistant service.
const (
	BackendEcho   = "echo"
	BackendGemini = "gemini"
)

const appDirName = ".askwidget"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Branding holds the static text of the landing view.
type Branding struct {
	Title         string `json:"title"`
	Tagline       string `json:"tagline"`
	AssistantName string `json:"assistant_name"`
	LauncherLabel string `json:"launcher_label"`
	Greeting      string `json:"greeting"`
	Prompt        string `json:"prompt"`
}

// Config represents the user configuration
type Config struct {
	// EndpointURL is the assistant service every query is POSTed to.
	EndpointURL string `json:"endpoint_url"`
	// RequestTimeout is in seconds. Zero leaves requests unbounded.
	RequestTimeout  int            `json:"request_timeout"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
	LogLevel        string         `json:"log_level,omitempty"`
	LogFile         string         `json:"log_file,omitempty"`
	Branding        Branding       `json:"branding"`
	// ServeAddr and AllowedOrigin configure the development service.
	ServeAddr     string `json:"serve_addr,omitempty"`
	AllowedOrigin string `json:"allowed_origin,omitempty"`
	// ServeBackend picks how the development service answers: "echo" or
	// "gemini".
	ServeBackend string `json:"serve_backend,omitempty"`
	GeminiModel  string `json:"gemini_model,omitempty"`
	// GeminiAPIKey only ever comes from the environment.
	GeminiAPIKey string `json:"-"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultBranding returns the stock landing text.
func DefaultBranding() Branding {
	return Branding{
		Title:         "Welcome to LNMIIT",
		Tagline:       "Your AI-powered assistant is ready to help. Open the chat to get started.",
		AssistantName: "LNMIIT Assistant",
		LauncherLabel: "Ask LNMIIT",
		Greeting:      "Welcome to LNMIIT!",
		Prompt:        "How can I help you today?",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		EndpointURL:     DefaultEndpointURL,
		RequestTimeout:  0,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "campus",
		Markdown:        DefaultMarkdownConfig(),
		LogLevel:        "info",
		Branding:        DefaultBranding(),
		ServeAddr:       "127.0.0.1:8000",
		AllowedOrigin:   "*",
		ServeBackend:    BackendEcho,
	}
}

// Timeout returns RequestTimeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, appDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path for cfg.
func GetLogPath(cfg Config) string {
	if p := strings.TrimSpace(cfg.LogFile); p != "" {
		return p
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return filepath.Join(appDirName, "logs", "askwidget.log")
	}
	return filepath.Join(configDir, "logs", "askwidget.log")
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// Load returns the effective configuration: file values overlaid with the
// environment (including an optional .env file in the working directory).
func Load() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvEndpointURL)); v != "" {
		cfg.EndpointURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRequestTimeout)); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			return fmt.Errorf("invalid %s %q: must be a non-negative number of seconds", EnvRequestTimeout, v)
		}
		cfg.RequestTimeout = secs
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTUITheme)); v != "" {
		cfg.TUITheme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServeBackend)); v != "" {
		cfg.ServeBackend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGeminiModel)); v != "" {
		cfg.GeminiModel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)); v != "" {
		cfg.GeminiAPIKey = v
	}
	return nil
}

// fillDefaults restores values a partial config file left empty.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if strings.TrimSpace(c.EndpointURL) == "" {
		c.EndpointURL = def.EndpointURL
	}
	if c.TUITheme == "" {
		c.TUITheme = def.TUITheme
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.ServeAddr == "" {
		c.ServeAddr = def.ServeAddr
	}
	if c.AllowedOrigin == "" {
		c.AllowedOrigin = def.AllowedOrigin
	}
	if c.ServeBackend == "" {
		c.ServeBackend = def.ServeBackend
	}
	b := &c.Branding
	if b.Title == "" {
		b.Title = def.Branding.Title
	}
	if b.Tagline == "" {
		b.Tagline = def.Branding.Tagline
	}
	if b.AssistantName == "" {
		b.AssistantName = def.Branding.AssistantName
	}
	if b.LauncherLabel == "" {
		b.LauncherLabel = def.Branding.LauncherLabel
	}
	if b.Greeting == "" {
		b.Greeting = def.Branding.Greeting
	}
	if b.Prompt == "" {
		b.Prompt = def.Branding.Prompt
	}
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateEndpoint checks that raw is an absolute http(s) URL.
func ValidateEndpoint(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("endpoint URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint URL %q: missing host", raw)
	}
	return nil
}

// TimeoutChoices lists the request timeouts offered by the config menu.
func TimeoutChoices() []int {
	return []int{0, 10, 30, 60, 120}
}

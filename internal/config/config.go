package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is used when neither the config file nor the environment
// names the service.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Environment variables consulted by ApplyEnv, highest priority first.
var baseURLEnv = []string{"RAG_API_URL", "VITE_API_URL"}

// APIConfig locates the knowledge service.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// TimeoutSecs bounds a whole request. Zero means no client-side timeout.
	TimeoutSecs int `yaml:"timeout_secs"`
}

// Timeout returns TimeoutSecs as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File receives logs while the terminal UI owns the screen. Empty
	// discards them.
	File string `yaml:"file"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	AltScreen bool `yaml:"alt_screen"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	API APIConfig `yaml:"api"`
	Log LogConfig `yaml:"log"`
	UI  UIConfig  `yaml:"ui"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragclient/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragclient/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides file values with environment variables. RAG_API_URL
// wins over VITE_API_URL; RAG_LOG_LEVEL sets the log level.
func ApplyEnv(cfg *AppConfig, getenv func(string) string) {
	for _, key := range baseURLEnv {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			cfg.API.BaseURL = v
			break
		}
	}
	if v := strings.TrimSpace(getenv("RAG_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragclient", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{BaseURL: DefaultBaseURL},
		Log: LogConfig{Level: "info", Format: "text"},
		UI:  UIConfig{AltScreen: true},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.TimeoutSecs < 0 {
		cfg.API.TimeoutSecs = 0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

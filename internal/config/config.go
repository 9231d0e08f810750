// Package config loads the leadchat configuration file and resolves
// standard filesystem paths.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the leadchat client.
type Config struct {
	API     APIConfig     `yaml:"api,omitempty"`
	Session SessionConfig `yaml:"session,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// APIConfig points the client at the chat backend.
type APIConfig struct {
	BaseURL        string `yaml:"baseUrl,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// SessionConfig controls conversation history behavior.
type SessionConfig struct {
	// HistoryLimit caps how many messages are persisted per session.
	HistoryLimit int `yaml:"historyLimit,omitempty"`
}

// StorageConfig selects the durable store backing session identity and
// message history.
type StorageConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "memory"
	Path   string `yaml:"path,omitempty"`   // sqlite database file
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		API:     APIConfig{BaseURL: "http://localhost:8000/api", TimeoutSeconds: 30},
		Session: SessionConfig{HistoryLimit: 50},
		Storage: StorageConfig{Driver: "sqlite"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config file and applies defaults and environment
// overrides. A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields after a partial file load.
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000/api"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.Session.HistoryLimit == 0 {
		cfg.Session.HistoryLimit = 50
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides lets the environment win over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LEADCHAT_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("LEADCHAT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

const defaultBaseDir = ".leadchat"

// Paths holds resolved filesystem paths for leadchat data.
type Paths struct {
	Base     string // ~/.leadchat
	Config   string // ~/.leadchat/config.yaml
	Database string // ~/.leadchat/leadchat.db
}

// ResolvePaths computes the standard paths from the home directory.
// LEADCHAT_HOME overrides the base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("LEADCHAT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:     base,
		Config:   filepath.Join(base, "config.yaml"),
		Database: filepath.Join(base, "leadchat.db"),
	}, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultBackendURL = "http://localhost:8000"
	BackendURLEnv     = "RAGCHAT_BACKEND_URL"
)

type Config struct {
	BackendURL         string        // Base URL of the RAG backend, without trailing slash
	LogFile            string        // Rotated JSON log file
	RequestTimeout     time.Duration // Zero keeps the transport default
	TranscriptTemplate string        // Mustache template for exports (optional)
}

type tomlConfig struct {
	BackendURL     string `toml:"backend_url"`
	LogFile        string `toml:"log_file"`
	RequestTimeout string `toml:"request_timeout"`
}

// Dir returns ~/.config/ragchat
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, ".config", "ragchat")
}

// Load reads config from ~/.config/ragchat/ and the environment
func Load() (*Config, error) {
	return LoadFrom(Dir())
}

// LoadFrom reads config.toml and transcript.mustache from configDir, then
// applies a .env file in the working directory and the environment.
func LoadFrom(configDir string) (*Config, error) {
	cfg := &Config{
		BackendURL: DefaultBackendURL,
		LogFile:    filepath.Join(configDir, "ragchat.log"),
	}

	tomlPath := filepath.Join(configDir, "config.toml")
	templatePath := filepath.Join(configDir, "transcript.mustache")

	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
		if tc.BackendURL != "" {
			cfg.BackendURL = tc.BackendURL
		}
		if tc.LogFile != "" {
			cfg.LogFile = tc.LogFile
		}
		if tc.RequestTimeout != "" {
			d, err := time.ParseDuration(tc.RequestTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid request_timeout %q: %w", tc.RequestTimeout, err)
			}
			cfg.RequestTimeout = d
		}
	}

	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.TranscriptTemplate = string(data)
	}

	// .env is optional; existing environment variables win over it
	_ = godotenv.Load()

	if v := os.Getenv(BackendURLEnv); v != "" {
		cfg.BackendURL = v
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	return cfg, nil
}

// Package config loads tool configuration from YAML, dotenv and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries the tunable settings of the merge tool.
type Config struct {
	// Version is the header version written to merged output.
	Version string `yaml:"version"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// Parser limits, in bytes. Zero keeps the built-in default.
	MaxStringLength     int64 `yaml:"max_string_length"`
	MaxStreamLength     int64 `yaml:"max_stream_length"`
	MaxDecompressedSize int64 `yaml:"max_decompressed_size"`
	// MaxXRefDepth bounds the incremental-update chain.
	MaxXRefDepth int `yaml:"max_xref_depth"`
}

// Load builds the configuration with precedence, highest last:
// built-in defaults, the YAML file at path (optional when path is
// empty), ./.env.local, then PDFMERGE_* environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Version:  "1.7",
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if data, err := os.ReadFile(defaultConfigPath()); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if v := os.Getenv("PDFMERGE_VERSION"); v != "" {
		cfg.Version = v
	}
	if v := os.Getenv("PDFMERGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// defaultConfigPath is ~/.config/pdfmerge/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "pdfmerge", "config.yaml")
}

// findEnvLocal walks up from the working directory looking for a
// .env.local file.
func findEnvLocal() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

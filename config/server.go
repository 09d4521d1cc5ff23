package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig holds configuration for the HTTP server wrapping the engine.
// It is loaded from a TOML file; zero values fall back to defaults.
type ServerConfig struct {
	Port        string `toml:"port"`
	DataDir     string `toml:"data_dir"`
	HistorySize int    `toml:"history_size"` // Max retained search records
}

// DefaultServerConfig returns the built-in server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		DataDir:     "./search_data",
		HistorySize: 10000,
	}
}

// LoadServerConfig reads a TOML config file and merges it over the defaults.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from an operator flag
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./search_data"
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 10000
	}
	return cfg, nil
}

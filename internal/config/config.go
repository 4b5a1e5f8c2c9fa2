// Package config loads abyss configuration and sets up logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values. Duration and level fields are read
// as strings from the file/env and parsed during Load.
type Config struct {
	// Remote dialogue agent
	AgentURL           string        `yaml:"agent_url"`
	AgentID            string        `yaml:"agent_id"`
	RequestTimeoutName string        `yaml:"request_timeout"`
	RequestTimeout     time.Duration `yaml:"-"`

	// Local storage
	DBPath string `yaml:"db_path"`

	// Logging
	LogFile      string     `yaml:"log_file"`
	LogLevelName string     `yaml:"log_level"`
	LogLevel     slog.Level `yaml:"-"`
}

// Load reads configuration from an optional YAML file, then applies
// environment-variable overrides on top. A missing config file is not an
// error; a malformed one is.
func Load() (Config, error) {
	cfg := defaults()

	path := configPath()
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg.AgentURL = getEnv("ABYSS_AGENT_URL", cfg.AgentURL)
	cfg.AgentID = getEnv("ABYSS_AGENT_ID", cfg.AgentID)
	cfg.DBPath = getEnv("ABYSS_DB_PATH", cfg.DBPath)
	cfg.LogFile = getEnv("ABYSS_LOG_FILE", cfg.LogFile)
	cfg.LogLevelName = getEnv("ABYSS_LOG_LEVEL", cfg.LogLevelName)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	cfg.RequestTimeoutName = getEnv("ABYSS_REQUEST_TIMEOUT", cfg.RequestTimeoutName)
	if cfg.RequestTimeoutName != "" {
		d, err := time.ParseDuration(cfg.RequestTimeoutName)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	return cfg, nil
}

func defaults() Config {
	dataDir := userDataDir()
	return Config{
		AgentURL:           "http://localhost:8080/api/agent",
		AgentID:            "6921973e23b88b385103d189",
		RequestTimeoutName: "60s",
		RequestTimeout:     60 * time.Second,
		DBPath:             filepath.Join(dataDir, "abyss.db"),
		LogFile:            filepath.Join(dataDir, "abyss.log"),
		LogLevelName:       "INFO",
		LogLevel:           slog.LevelInfo,
	}
}

// configPath returns the config file location: $ABYSS_CONFIG if set,
// otherwise ~/.config/abyss/config.yaml.
func configPath() string {
	if p := os.Getenv("ABYSS_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "abyss", "config.yaml")
}

func userDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "abyss")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings shelf reads from config.toml.
type Config struct {
	APIURL          string
	LogFile         string
	LogLevel        string
	RememberSession bool
	SessionFile     string
	WatchExtensions []string
}

const (
	defaultConfigPath      = "~/.config/shelf/config.toml"
	defaultAPIURL          = "http://127.0.0.1:8000/api/v1"
	defaultLogFile         = "~/.local/state/shelf/shelf.log"
	defaultLogLevel        = "info"
	defaultSessionFile     = "~/.config/shelf/session.toml"
	defaultWatchExtensions = ".pdf,.txt,.md,.epub"

	envAPIURL   = "SHELF_API_URL"
	envLogLevel = "SHELF_LOG_LEVEL"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
		RememberSession: true,
		SessionFile:     mustExpand(defaultSessionFile),
		WatchExtensions: parseExtensions(defaultWatchExtensions),
	}
}

// Load locates and parses the shelf config, falling back to defaults when
// missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := ExpandPath(path, defaultConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg)
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL          string `toml:"api_url"`
		LogFile         string `toml:"log_file"`
		LogLevel        string `toml:"log_level"`
		RememberSession *bool  `toml:"remember_session"`
		SessionFile     string `toml:"session_file"`
		WatchExtensions string `toml:"watch_extensions"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if raw.RememberSession != nil {
		cfg.RememberSession = *raw.RememberSession
	}
	if v := strings.TrimSpace(raw.SessionFile); v != "" {
		cfg.SessionFile = mustExpand(v)
	}
	if exts := parseExtensions(raw.WatchExtensions); len(exts) > 0 {
		cfg.WatchExtensions = exts
	}

	return applyEnv(cfg)
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv(envAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if !validLogLevels[cfg.LogLevel] {
		return Config{}, fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", cfg.LogLevel)
	}
	return cfg, nil
}

// parseExtensions splits a comma-separated list into lowercase extensions
// with a leading dot.
func parseExtensions(value string) []string {
	var exts []string
	for _, part := range strings.Split(value, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path, "")
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ to the home directory and returns an
// absolute path. A blank path resolves fallback instead.
func ExpandPath(path, fallback string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = strings.TrimSpace(fallback)
	}
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if rest, ok := strings.CutPrefix(trimmed, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, rest)
	}
	return filepath.Abs(trimmed)
}

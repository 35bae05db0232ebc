package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds folio's runtime settings.
type Config struct {
	APIURL            string
	DataDir           string
	LogLevel          string
	Debounce          time.Duration
	RequestsPerSecond float64
	CacheTTL          time.Duration
	Languages         []string
}

const (
	defaultConfigPath        = "~/.config/folio/config.toml"
	defaultDataDir           = "~/.local/share/folio"
	defaultAPIURL            = "https://gutendex.com"
	defaultLogLevel          = "info"
	defaultDebounceMS        = 500
	defaultRequestsPerSecond = 2
	defaultCacheTTLSeconds   = 60
)

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		APIURL:            defaultAPIURL,
		DataDir:           mustExpand(defaultDataDir),
		LogLevel:          defaultLogLevel,
		Debounce:          defaultDebounceMS * time.Millisecond,
		RequestsPerSecond: defaultRequestsPerSecond,
		CacheTTL:          defaultCacheTTLSeconds * time.Second,
	}
}

// Load locates and parses the folio config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL            string   `toml:"api_url"`
		DataDir           string   `toml:"data_dir"`
		LogLevel          string   `toml:"log_level"`
		DebounceMS        *int     `toml:"debounce_ms"`
		RequestsPerSecond *float64 `toml:"requests_per_second"`
		CacheTTLSeconds   *int     `toml:"cache_ttl_seconds"`
		Languages         []string `toml:"languages"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir, err = expandPath(v)
		if err != nil {
			return Config{}, fmt.Errorf("data_dir: %w", err)
		}
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if raw.DebounceMS != nil {
		if *raw.DebounceMS < 0 {
			return Config{}, fmt.Errorf("debounce_ms must be >= 0, got %d", *raw.DebounceMS)
		}
		cfg.Debounce = time.Duration(*raw.DebounceMS) * time.Millisecond
	}
	if raw.RequestsPerSecond != nil {
		if *raw.RequestsPerSecond < 0 {
			return Config{}, fmt.Errorf("requests_per_second must be >= 0, got %g", *raw.RequestsPerSecond)
		}
		cfg.RequestsPerSecond = *raw.RequestsPerSecond
	}
	if raw.CacheTTLSeconds != nil {
		if *raw.CacheTTLSeconds < 0 {
			return Config{}, fmt.Errorf("cache_ttl_seconds must be >= 0, got %d", *raw.CacheTTLSeconds)
		}
		cfg.CacheTTL = time.Duration(*raw.CacheTTLSeconds) * time.Second
	}
	for _, lang := range raw.Languages {
		if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
			cfg.Languages = append(cfg.Languages, lang)
		}
	}

	return cfg, nil
}

// WishlistPath returns the bbolt database holding the wishlist.
func (c Config) WishlistPath() string {
	return filepath.Join(c.dataDir(), "folio.db")
}

// LogPath returns folio's own log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "folio.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

// DefaultDir returns the directory holding config.toml and prefs.toml.
func DefaultDir() string {
	return filepath.Dir(mustExpand(defaultConfigPath))
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Write encodings accepted by the settings endpoint.
const (
	EncodingJSON = "json"
	EncodingForm = "form"
)

// Environment variables that override file values.
const (
	EnvSettingsURL = "LUMEN_SETTINGS_URL"
	EnvLogLevel    = "LUMEN_LOG_LEVEL"
)

const (
	defaultConfigPath     = "~/.config/lumen/config.toml"
	defaultSettingsURL    = "http://localhost:8000"
	defaultRequestTimeout = 5 * time.Second
	defaultDimmerDebounce = 100 * time.Millisecond
	defaultMaxRPS         = 10.0
	defaultNoticeTimeout  = 4 * time.Second
	defaultLogLevel       = "info"
	defaultLogFile        = "~/.local/state/lumen/lumen.log"
)

var defaultModes = []string{"LOW", "MEDIUM", "HIGH"}

// Duration is a time.Duration read from a string such as "150ms" in either
// TOML or YAML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// LogConfig controls where and how the client logs.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
	JSON  bool   `toml:"json" yaml:"json"`
}

// Config is the resolved client configuration.
type Config struct {
	SettingsURL          string
	RequestTimeout       time.Duration
	DimmerDebounce       time.Duration
	DimmerLeadingEdge    bool
	WriteEncoding        string
	Modes                []string
	MaxRequestsPerSecond float64
	NoticeTimeout        time.Duration
	Log                  LogConfig

	// Path is the config file that was read, or would have been.
	Path string
}

type fileConfig struct {
	SettingsURL          string    `toml:"settings_url" yaml:"settings_url"`
	RequestTimeout       Duration  `toml:"request_timeout" yaml:"request_timeout"`
	DimmerDebounce       Duration  `toml:"dimmer_debounce" yaml:"dimmer_debounce"`
	DimmerLeadingEdge    bool      `toml:"dimmer_leading_edge" yaml:"dimmer_leading_edge"`
	WriteEncoding        string    `toml:"write_encoding" yaml:"write_encoding"`
	Modes                []string  `toml:"modes" yaml:"modes"`
	MaxRequestsPerSecond float64   `toml:"max_requests_per_second" yaml:"max_requests_per_second"`
	NoticeTimeout        Duration  `toml:"notice_timeout" yaml:"notice_timeout"`
	Log                  LogConfig `toml:"log" yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		SettingsURL:          defaultSettingsURL,
		RequestTimeout:       defaultRequestTimeout,
		DimmerDebounce:       defaultDimmerDebounce,
		WriteEncoding:        EncodingJSON,
		Modes:                append([]string(nil), defaultModes...),
		MaxRequestsPerSecond: defaultMaxRPS,
		NoticeTimeout:        defaultNoticeTimeout,
		Log: LogConfig{
			Level: defaultLogLevel,
			File:  mustExpand(defaultLogFile),
		},
	}
}

// Load reads the config file at path (TOML, or YAML by extension), falling
// back to defaults when it is missing, then applies environment overrides. A
// .env file in the working directory is loaded first if present.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		var raw fileConfig
		if err := decode(resolved, data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.apply(raw)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the client cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.SettingsURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("settings_url %q is not an absolute URL", c.SettingsURL)
	}
	if c.WriteEncoding != EncodingJSON && c.WriteEncoding != EncodingForm {
		return fmt.Errorf("write_encoding %q must be %q or %q", c.WriteEncoding, EncodingJSON, EncodingForm)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.DimmerDebounce < 0 {
		return fmt.Errorf("dimmer_debounce must not be negative")
	}
	if len(c.Modes) == 0 {
		return fmt.Errorf("modes must list at least one intensity mode")
	}
	return nil
}

func (c *Config) apply(raw fileConfig) {
	if v := strings.TrimSpace(raw.SettingsURL); v != "" {
		c.SettingsURL = v
	}
	if raw.RequestTimeout > 0 {
		c.RequestTimeout = raw.RequestTimeout.Duration()
	}
	if raw.DimmerDebounce > 0 {
		c.DimmerDebounce = raw.DimmerDebounce.Duration()
	}
	c.DimmerLeadingEdge = raw.DimmerLeadingEdge
	if v := strings.ToLower(strings.TrimSpace(raw.WriteEncoding)); v != "" {
		c.WriteEncoding = v
	}
	if modes := trimModes(raw.Modes); len(modes) > 0 {
		c.Modes = modes
	}
	if raw.MaxRequestsPerSecond > 0 {
		c.MaxRequestsPerSecond = raw.MaxRequestsPerSecond
	}
	if raw.NoticeTimeout > 0 {
		c.NoticeTimeout = raw.NoticeTimeout.Duration()
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Log.File); v != "" {
		c.Log.File = mustExpand(v)
	}
	c.Log.JSON = raw.Log.JSON
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvSettingsURL)); v != "" {
		c.SettingsURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

func decode(path string, data []byte, out *fileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	default:
		return toml.Unmarshal(data, out)
	}
}

// loadDotEnv reads ./.env without overriding variables already set.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func trimModes(modes []string) []string {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
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

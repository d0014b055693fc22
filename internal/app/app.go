package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/lumen/internal/config"
	"github.com/five82/lumen/internal/controller"
	"github.com/five82/lumen/internal/lights"
	"github.com/five82/lumen/internal/prefs"
	"github.com/five82/lumen/internal/ui"
)

// Options configure the lumen application. Non-zero fields override the
// config file.
type Options struct {
	ConfigPath  string
	PrefsPath   string        // empty uses default ~/.config/lumen/prefs.toml
	SettingsURL string        // device origin
	Debounce    time.Duration // dimmer quiet window
}

// Run boots the lumen TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logFile, err := setupLogging(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	log.Info().
		Str("config", cfg.Path).
		Str("settings_url", cfg.SettingsURL).
		Dur("dimmer_debounce", cfg.DimmerDebounce).
		Str("encoding", cfg.WriteEncoding).
		Msg("starting lumen")

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("init lights client: %w", err)
	}

	ctrl := controller.New(client, controller.Options{
		Context:           ctx,
		DimmerDebounce:    cfg.DimmerDebounce,
		DimmerLeadingEdge: cfg.DimmerLeadingEdge,
	})

	err = ui.Run(ui.Options{
		Context:       ctx,
		Controller:    ctrl,
		Origin:        client.BaseURL(),
		Modes:         cfg.Modes,
		NoticeTimeout: cfg.NoticeTimeout,
		LogPath:       cfg.Log.File,
		ThemeName:     userPrefs.Theme,
		Focus:         userPrefs.Focus,
		PrefsPath:     prefsPath,
	})
	log.Info().Err(err).Msg("lumen stopped")
	return err
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.SettingsURL != "" {
		cfg.SettingsURL = opts.SettingsURL
	}
	if opts.Debounce > 0 {
		cfg.DimmerDebounce = opts.Debounce
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newClient(cfg config.Config) (*lights.Client, error) {
	opts := []lights.Option{
		lights.WithTimeout(cfg.RequestTimeout),
		lights.WithRateLimit(cfg.MaxRequestsPerSecond),
	}
	if cfg.WriteEncoding == config.EncodingForm {
		opts = append(opts, lights.WithFormEncoding())
	}
	return lights.NewClient(cfg.SettingsURL, opts...)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/lumen/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/lumen/config.toml)")
	settingsURL := flag.String("url", "", "device origin, e.g. http://localhost:8000 (optional)")
	debounce := flag.Duration("debounce", 0, "dimmer debounce window, e.g. 150ms (optional, defaults to 100ms)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  *configPath,
		SettingsURL: *settingsURL,
	}
	if d := *debounce; d > 0 {
		opts.Debounce = d
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		return 1
	}
	return 0
}

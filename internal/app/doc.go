// Package app is lumen's composition root.
//
// # Overview
//
// Run wires configuration, logging, preferences, the lights client, the
// controller and the UI, then blocks in the Bubble Tea event loop until the
// user quits or the context is cancelled.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        TOML/YAML file, .env, env overrides
//	       ├─────> setupLogging()       zerolog to the log file
//	       ├─────> prefs.Load()         theme and last focused pane
//	       ├─────> lights.NewClient()   timeout, rate limit, encoding
//	       ├─────> controller.New()     sync state and dimmer debounce
//	       └─────> ui.Run()             TUI (blocks)
//
// There is no background poller. The first fetch is issued by the UI's Init
// and later fetches only on an explicit refresh.
//
// # Logging
//
// The terminal belongs to the UI, so logs go to a file (log.file, default
// ~/.local/state/lumen/lumen.log) as uncolored console lines or, with
// log.json, one JSON object per line. An empty log.file discards logs. The
// in-app log overlay tails the same file.
//
// # Error Handling
//
// Configuration, logging and client construction errors are returned from
// Run before the UI starts. Round-trip failures never are: the controller
// turns them into notices and the UI keeps running.
package app

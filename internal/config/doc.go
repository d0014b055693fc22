// Package config loads lumen's client configuration.
//
// # Resolution Order
//
// Values are resolved from lowest to highest precedence:
//
//  1. Built-in defaults (Default)
//  2. The config file, ~/.config/lumen/config.toml unless a path is given.
//     Files ending in .yaml or .yml are read as YAML, anything else as TOML.
//     A missing file is not an error.
//  3. Environment variables LUMEN_SETTINGS_URL and LUMEN_LOG_LEVEL. A .env
//     file in the working directory is loaded first; variables that are
//     already set win over it.
//  4. Command-line flags, applied by the caller after Load returns.
//
// # Keys
//
//	settings_url            = "http://localhost:8000"
//	request_timeout         = "5s"
//	dimmer_debounce         = "100ms"
//	dimmer_leading_edge     = false
//	write_encoding          = "json"      # or "form"
//	modes                   = ["LOW", "MEDIUM", "HIGH"]
//	max_requests_per_second = 10
//	notice_timeout          = "4s"
//
//	[log]
//	level = "info"
//	file  = "~/.local/state/lumen/lumen.log"
//	json  = false
//
// Empty or zero values fall back to the defaults above. Durations are Go
// duration strings in both formats.
package config

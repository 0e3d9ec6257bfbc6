// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/depot/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/depot/config.cue on macOS, %APPDATA%\depot\config.cue
// on Windows), falling back to ./config.cue. It declares the cache directories, layouts,
// remote hosts, content handlers and proxy used to build a transit.CacheDirective,
// plus the library file and UI settings. DEPOT_* environment variables override file values.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config

// Package config loads, normalizes, and validates scan processor configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MULTISCAN_DATA_DIR and MULTISCAN_TOOLS_DIR. Tool directories that are not
// configured explicitly are derived from tools_dir.
//
// Command-line flags are layered on with WithOverrides, which returns a new
// Config. Downstream packages receive the result by value and never modify it.
package config

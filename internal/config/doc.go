// Package config loads, normalizes, and validates originhash configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files from ~/.config/originhash/config.toml or ./originhash.toml, and
// honours the ORIGINHASH_LOG_LEVEL environment override. When no file exists
// in the default locations every knob falls back to a usable default; a path
// named explicitly must exist.
package config

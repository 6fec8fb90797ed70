// Package config loads, normalizes, and validates the TOML configuration
// that drives discovery, the two-phase clip pipeline, and publishing.
package config

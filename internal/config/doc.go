// Package config loads, normalizes, and validates plarchive configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLARCHIVE_YTDLP_PATH. The Config type centralizes every knob the archiver and
// CLI need, so the output root, work directory, marker file, and playlist
// catalog are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

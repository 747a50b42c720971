// Package config loads, normalizes, and validates clipforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ELEVENLABS_API_KEY and YANDEX_API_KEY (optionally via a .env file). The
// Config type centralizes every knob the daemon and CLI need: artifact
// directories, the fixed clip geometry and encoder policy, subtitle limits,
// and the narration provider cascade.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

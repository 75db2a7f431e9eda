// Package config loads, normalizes, and validates vyomarr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VYOMARR_API_TOKEN and VYOMARR_NTFY_TOPIC. The Config type centralizes every
// knob the daemon and CLI need: where the content database lives, how often
// the publication sweep runs, and where publish notifications go.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

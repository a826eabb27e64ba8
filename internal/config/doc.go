// Package config loads, normalizes, and validates mscx configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MSCX_MSCORE for the renderer binary. The Config value is created once per
// process and threaded into the components that need it (score saving, the
// rename engine, the batch loop); nothing reads it from global state.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

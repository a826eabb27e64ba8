package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Render.TimeoutSeconds < 0 {
		return errors.New("render.timeout_seconds must be zero or positive")
	}
	if _, err := filepath.Match(c.Batch.Glob, "probe.mscx"); err != nil {
		return fmt.Errorf("batch.glob: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeRename()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	if strings.TrimSpace(c.Rename.TargetDir) != "" {
		if c.Rename.TargetDir, err = expandPath(c.Rename.TargetDir); err != nil {
			return fmt.Errorf("rename.target_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeRender() {
	if value, ok := os.LookupEnv("MSCX_MSCORE"); ok && strings.TrimSpace(value) != "" {
		c.Render.Binary = strings.TrimSpace(value)
	}
	c.Render.Binary = strings.TrimSpace(c.Render.Binary)
	if c.Render.Binary == "" {
		c.Render.Binary = defaultRenderBinary
	}
}

func (c *Config) normalizeRename() {
	if strings.TrimSpace(c.Rename.Template) == "" {
		c.Rename.Template = defaultRenameTemplate
	}
	fields := c.Rename.SkipIfEmpty[:0]
	for _, name := range c.Rename.SkipIfEmpty {
		if name = strings.TrimSpace(name); name != "" {
			fields = append(fields, name)
		}
	}
	c.Rename.SkipIfEmpty = fields
}

func (c *Config) normalizeBatch() {
	c.Batch.Glob = strings.TrimSpace(c.Batch.Glob)
	if c.Batch.Glob == "" {
		c.Batch.Glob = defaultBatchGlob
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

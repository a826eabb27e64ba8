package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mscx/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithRenameTemplate overrides the rename template.
func WithRenameTemplate(template string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rename.Template = template
	}
}

// WithRenameTarget points renamed files at a directory under the temp base.
func WithRenameTarget(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rename.TargetDir = filepath.Join(b.baseDir, name)
	}
}

// WithErrorTolerant toggles per-file error capture in batches.
func WithErrorTolerant(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.ErrorTolerant = enabled
	}
}

// WithJournal enables the rename journal.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// WithStubbedRenderer writes a stub renderer that copies its source onto the
// -o destination and points the config at it.
func WithStubbedRenderer() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "mscore")
		script := []byte("#!/bin/sh\n[ \"$2\" = \"$3\" ] || cp \"$3\" \"$2\"\nexit 0\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub renderer: %v", err)
		}
		b.cfg.Render.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

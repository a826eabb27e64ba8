package rename

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"mscx/internal/config"
)

// NewFileLocker returns an advisory file lock at path, creating its parent
// directory.
func NewFileLocker(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return flock.New(path), nil
}

// FromConfig builds an Engine from the rename section of cfg, adding the file
// lock when enabled.
func FromConfig(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg != nil && cfg.Rename.Lock {
		lock, err := NewFileLocker(cfg.RenameLockPath())
		if err != nil {
			return nil, err
		}
		opts = append([]Option{WithLocker(lock)}, opts...)
	}
	return New(OptionsFromConfig(cfg), opts...), nil
}

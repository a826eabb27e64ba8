package rename

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mscx/internal/config"
	"mscx/internal/fileutil"
	"mscx/internal/logging"
	"mscx/internal/textutil"
)

// Status is the outcome of one rename.
type Status string

const (
	StatusRenamed        Status = "renamed"
	StatusSkipped        Status = "skipped"
	StatusAlreadyPresent Status = "already_present"
	StatusDryRun         Status = "dry_run"
	StatusUnchanged      Status = "unchanged"
)

// ErrEmptyTemplate is returned when the template expands to nothing.
var ErrEmptyTemplate = errors.New("rename template expands to an empty name")

// Options controls path construction.
type Options struct {
	Template string
	// TargetDir anchors relative results. Empty means the working directory.
	TargetDir    string
	Alphanum     bool
	ASCII        bool
	NoWhitespace bool
	// SkipIfEmpty names fields that must be non-empty for a rename to happen.
	SkipIfEmpty []string
	DryRun      bool
}

// OptionsFromConfig copies the rename section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Template:     cfg.Rename.Template,
		TargetDir:    cfg.Rename.TargetDir,
		Alphanum:     cfg.Rename.Alphanum,
		ASCII:        cfg.Rename.ASCII,
		NoWhitespace: cfg.Rename.NoWhitespace,
		SkipIfEmpty:  append([]string(nil), cfg.Rename.SkipIfEmpty...),
	}
}

// Locker serializes collision resolution between processes.
type Locker interface {
	Lock() error
	Unlock() error
}

// Recorder receives every result, e.g. to keep a history.
type Recorder interface {
	Record(ctx context.Context, result Result) error
}

// Result describes one rename.
type Result struct {
	Source      string
	Destination string
	Status      Status
	Checksum    string
	// Missing lists the required fields that were empty for skipped renames.
	Missing []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker guards collision resolution with l.
func WithLocker(l Locker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithRecorder reports every result to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithOptions replaces the naming options, e.g. with command line overrides
// of the configured ones.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine renames files from field snapshots.
type Engine struct {
	opts     Options
	locker   Locker
	recorder Recorder
	logger   *slog.Logger
}

// New constructs an Engine.
func New(opts Options, engineOpts ...Option) *Engine {
	e := &Engine{opts: opts, logger: logging.NewNop()}
	for _, opt := range engineOpts {
		opt(e)
	}
	return e
}

// Normalize prepares one field value for use in a path.
func (e *Engine) Normalize(value string) string {
	if e.opts.Alphanum {
		value = textutil.AlphanumOnly(value)
	}
	if e.opts.ASCII {
		value = textutil.ToASCII(value)
	}
	if e.opts.NoWhitespace {
		value = textutil.StripWhitespace(value)
	}
	value = strings.TrimSpace(value)
	return textutil.ReplaceSeparators(value)
}

// MissingFields returns the required fields that are empty in snapshot.
func (e *Engine) MissingFields(snapshot map[string]string) []string {
	var missing []string
	for _, name := range e.opts.SkipIfEmpty {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.TrimSpace(snapshot[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Expand fills the template with normalized snapshot values. Placeholders
// missing from the snapshot expand to "".
func (e *Engine) Expand(snapshot map[string]string) string {
	return textutil.Expand(e.opts.Template, func(name string) (string, bool) {
		v, ok := snapshot[name]
		if !ok {
			return "", false
		}
		return e.Normalize(v), true
	})
}

// Destination returns the path source would move to, before collision
// resolution. The extension of source is kept.
func (e *Engine) Destination(source string, snapshot map[string]string) (string, error) {
	name := strings.TrimSpace(e.Expand(snapshot))
	if name == "" || strings.Trim(name, "/.") == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyTemplate, e.opts.Template)
	}
	target := e.opts.TargetDir
	if target == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("working directory: %w", err)
		}
		target = wd
	}
	dest := filepath.Join(target, filepath.FromSlash(name)+filepath.Ext(source))
	return filepath.Abs(dest)
}

// Rename moves source to the path built from snapshot.
func (e *Engine) Rename(ctx context.Context, source string, snapshot map[string]string) (Result, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %s: %w", source, err)
	}
	result := Result{Source: abs}
	logger := e.logger.With(logging.String(logging.FieldFile, abs))

	if missing := e.MissingFields(snapshot); len(missing) > 0 {
		result.Status = StatusSkipped
		result.Missing = missing
		logger.Info("rename skipped", logging.String("missing", strings.Join(missing, ",")))
		return result, e.record(ctx, result)
	}

	dest, err := e.Destination(abs, snapshot)
	if err != nil {
		return result, err
	}

	if e.locker != nil {
		if err := e.locker.Lock(); err != nil {
			return result, fmt.Errorf("acquire rename lock: %w", err)
		}
		defer func() {
			if err := e.locker.Unlock(); err != nil {
				logger.Warn("release rename lock failed", logging.Error(err))
			}
		}()
	}

	if dest == abs {
		result.Destination = dest
		result.Status = StatusUnchanged
		return result, e.record(ctx, result)
	}

	sum, err := fileutil.Checksum(abs)
	if err != nil {
		return result, err
	}
	result.Checksum = sum

	final, duplicate, err := resolveCollision(dest, sum)
	if err != nil {
		return result, err
	}
	result.Destination = final
	switch {
	case duplicate:
		result.Status = StatusAlreadyPresent
		logger.Info("identical file already present", logging.String(logging.FieldDestination, final))
	case e.opts.DryRun:
		result.Status = StatusDryRun
		logger.Info("would rename", logging.String(logging.FieldDestination, final))
	default:
		if err := fileutil.MoveFile(abs, final); err != nil {
			return result, fmt.Errorf("rename %s: %w", abs, err)
		}
		result.Status = StatusRenamed
		logger.Info("renamed", logging.String(logging.FieldDestination, final))
	}
	return result, e.record(ctx, result)
}

func (e *Engine) record(ctx context.Context, result Result) error {
	if e.recorder == nil {
		return nil
	}
	if err := e.recorder.Record(ctx, result); err != nil {
		return fmt.Errorf("record rename: %w", err)
	}
	return nil
}

// Candidate returns the n-th collision candidate of dest: n=0 is dest itself,
// later ones insert n before the extension.
func Candidate(dest string, n int) string {
	if n == 0 {
		return dest
	}
	ext := filepath.Ext(dest)
	return strings.TrimSuffix(dest, ext) + strconv.Itoa(n) + ext
}

// resolveCollision walks the candidates of dest and returns the first free
// one. duplicate is set when an occupied candidate has checksum sum.
func resolveCollision(dest, sum string) (string, bool, error) {
	for n := 0; ; n++ {
		candidate := Candidate(dest, n)
		info, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("stat %s: %w", candidate, err)
		}
		if info.IsDir() {
			continue
		}
		existing, err := fileutil.Checksum(candidate)
		if err != nil {
			return "", false, err
		}
		if existing == sum {
			return candidate, true, nil
		}
	}
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mscx/internal/config"
	"mscx/internal/fields"
	"mscx/internal/logging"
	"mscx/internal/rename"
	"mscx/internal/score"
	"mscx/internal/textutil"
)

// Handler applies a command to one opened score.
type Handler func(ctx context.Context, reg *fields.Registry) error

// Options controls the follow-up steps of each iteration.
type Options struct {
	ErrorTolerant bool
	Backup        bool
	// DryRun skips saving.
	DryRun bool
	Render bool
	// Diff captures a unified diff of the document in FileResult.Diff.
	Diff      bool
	Verbosity int
	// LogFile receives LogTemplate expanded against each file's fields.
	LogFile     string
	LogTemplate string
	// Export writes <stem>.<format> next to every score when set.
	Export fields.Format
}

// OptionsFromConfig copies the batch section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{Verbosity: fields.DefaultVerbosity}
	if cfg != nil {
		opts.ErrorTolerant = cfg.Batch.ErrorTolerant
		opts.Backup = cfg.Batch.Backup
	}
	return opts
}

// FileResult reports one processed file.
type FileResult struct {
	Path        string
	Changes     []fields.Change
	Diff        string
	Backup      string
	ExportPath  string
	Rename      *rename.Result
	ParseErrors []error
	Err         error
}

// Summary reports a whole run.
type Summary struct {
	RunID   string
	Results []FileResult
}

// Failed counts results that carry an error.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRenderer is passed to every opened score.
func WithRenderer(r score.Renderer) RunnerOption {
	return func(run *Runner) {
		run.renderer = r
	}
}

// WithRenamer renames each file after it was saved.
func WithRenamer(e *rename.Engine) RunnerOption {
	return func(run *Runner) {
		run.renamer = e
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(run *Runner) {
		if logger != nil {
			run.logger = logger
		}
	}
}

// WithReporter is called after every file, failed or not.
func WithReporter(fn func(FileResult)) RunnerOption {
	return func(run *Runner) {
		run.report = fn
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) RunnerOption {
	return func(run *Runner) {
		run.runID = id
	}
}

// Runner processes files sequentially.
type Runner struct {
	opts     Options
	renderer score.Renderer
	renamer  *rename.Engine
	logger   *slog.Logger
	report   func(FileResult)
	runID    string
}

// NewRunner constructs a Runner.
func NewRunner(opts Options, runnerOpts ...RunnerOption) *Runner {
	r := &Runner{opts: opts, logger: logging.NewNop()}
	for _, opt := range runnerOpts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	return r
}

// RunID identifies this runner's batch in logs and the journal.
func (r *Runner) RunID() string {
	return r.runID
}

// Run processes files in order. Without error tolerance the first failure
// stops the loop and is returned; the summary always holds every result
// produced so far.
func (r *Runner) Run(ctx context.Context, files []string, handler Handler) (Summary, error) {
	ctx = logging.WithRunID(ctx, r.runID)
	summary := Summary{RunID: r.runID}
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("batch started", logging.Int("files", len(files)))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := r.processFile(ctx, path, handler)
		summary.Results = append(summary.Results, result)
		if r.report != nil {
			r.report(result)
		}
		if result.Err == nil {
			continue
		}
		if !r.opts.ErrorTolerant {
			return summary, result.Err
		}
		logging.WithContext(logging.WithFile(ctx, path), r.logger).
			Error("file failed", logging.Error(result.Err))
	}

	logger.Info("batch finished",
		logging.Int("files", len(summary.Results)),
		logging.Int("failed", summary.Failed()),
	)
	return summary, nil
}

func (r *Runner) processFile(ctx context.Context, path string, handler Handler) (result FileResult) {
	result.Path = path
	ctx = logging.WithFile(ctx, path)
	logger := logging.WithContext(ctx, r.logger)

	opts := []score.Option{score.WithLogger(r.logger)}
	if r.renderer != nil {
		opts = append(opts, score.WithRenderer(r.renderer))
	}
	sc, err := score.Open(path, opts...)
	if err != nil {
		result.Err = err
		return result
	}
	defer func() {
		if err := sc.Close(); err != nil && result.Err == nil {
			result.Err = err
		}
	}()
	result.ParseErrors = sc.Errors

	if r.opts.Backup && !r.opts.DryRun {
		backup, err := sc.Backup()
		if err != nil {
			result.Err = err
			return result
		}
		result.Backup = backup
	}

	reg := fields.New(sc)
	pre := reg.Snapshot()

	if handler != nil {
		if err := handler(ctx, reg); err != nil {
			result.Err = fmt.Errorf("%s: %w", filepath.Base(path), err)
			return result
		}
	}
	result.Changes = reg.Diff(pre, r.opts.Verbosity)

	if sc.Parsed() && r.opts.Diff {
		diff, err := sc.Diff()
		if err != nil {
			result.Err = err
			return result
		}
		result.Diff = diff
	}

	if r.opts.Export != "" {
		exported, err := reg.ExportFile(r.opts.Export)
		if err != nil {
			result.Err = err
			return result
		}
		result.ExportPath = exported
	}

	if r.opts.LogFile != "" && r.opts.LogTemplate != "" {
		if err := appendLogLine(r.opts.LogFile, textutil.ExpandMap(r.opts.LogTemplate, reg.Snapshot())); err != nil {
			result.Err = err
			return result
		}
	}

	if !sc.Parsed() {
		result.Err = errors.Join(sc.Errors...)
		return result
	}

	if !r.opts.DryRun {
		if err := sc.Save(ctx, "", r.opts.Render); err != nil {
			result.Err = err
			return result
		}
	}

	if r.renamer != nil {
		renamed, err := r.renamer.Rename(ctx, sc.Path, reg.Snapshot())
		if err != nil {
			result.Err = err
			return result
		}
		result.Rename = &renamed
	}

	logger.Debug("file processed", logging.Int("changes", len(result.Changes)))
	return result
}

func appendLogLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.WriteString(strings.TrimRight(line, "\n") + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write log file: %w", err)
	}
	return f.Close()
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mscx/internal/batch"
	"mscx/internal/config"
	"mscx/internal/fields"
	"mscx/internal/logging"
	"mscx/internal/services/mscore"
)

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.config)
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// batchOptions merges the config defaults with the global flags.
func (c *commandContext) batchOptions(cfg *config.Config) batch.Options {
	opts := batch.OptionsFromConfig(cfg)
	opts.ErrorTolerant = opts.ErrorTolerant || c.flags.catchErrors
	opts.Backup = opts.Backup || c.flags.backup
	opts.DryRun = c.flags.dryRun
	opts.Diff = c.flags.diff
	opts.Render = c.flags.render
	opts.Verbosity = fields.DefaultVerbosity + c.flags.verbose
	if strings.TrimSpace(c.flags.logFile) != "" {
		opts.LogFile = c.flags.logFile
		opts.LogTemplate = c.flags.logTemplate
	}
	return opts
}

func (c *commandContext) glob(cfg *config.Config) string {
	if g := strings.TrimSpace(c.flags.glob); g != "" {
		return g
	}
	return cfg.Batch.Glob
}

// runBatch collects the files named by args and processes them with handler,
// printing a report per file. adjust may tweak the options before the run.
func (c *commandContext) runBatch(cmd *cobra.Command, args []string, handler batch.Handler, adjust func(*batch.Options), extra ...batch.RunnerOption) (batch.Summary, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return batch.Summary{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return batch.Summary{}, err
	}
	files, err := batch.CollectFiles(args, c.glob(cfg))
	if err != nil {
		return batch.Summary{}, err
	}

	opts := c.batchOptions(cfg)
	if adjust != nil {
		adjust(&opts)
	}

	out := cmd.OutOrStdout()
	runnerOpts := []batch.RunnerOption{
		batch.WithLogger(logger),
		batch.WithReporter(func(result batch.FileResult) {
			printFileResult(out, result, shouldColorize(out))
		}),
	}
	if opts.Render {
		client, err := mscore.New(cfg.Render.Binary, cfg.RenderTimeout(), mscore.WithOutput(func(line string) {
			logger.Debug("mscore output", logging.String("line", line))
		}))
		if err != nil {
			return batch.Summary{}, err
		}
		logger.Debug("renderer enabled", logging.String("binary", client.Binary()))
		runnerOpts = append(runnerOpts, batch.WithRenderer(client))
	}
	runnerOpts = append(runnerOpts, extra...)

	summary, err := batch.NewRunner(opts, runnerOpts...).Run(cmd.Context(), files, handler)
	if failed := summary.Failed(); failed > 0 && err == nil {
		fmt.Fprintf(out, "%d of %d files failed\n", failed, len(summary.Results))
	}
	return summary, err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// splitAssignment parses "name=value".
func splitAssignment(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", raw)
	}
	return name, value, nil
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

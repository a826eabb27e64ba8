package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mscx/internal/batch"
	"mscx/internal/journal"
	"mscx/internal/rename"
)

type renameFlags struct {
	template     string
	target       string
	alphanum     bool
	ascii        bool
	noWhitespace bool
	skipIfEmpty  []string
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	flags := &renameFlags{}
	cmd := &cobra.Command{
		Use:   "rename <path>...",
		Short: "Rename files from their metadata",
		Long: `Rename every score to a path built from its fields.

The template uses $name or ${name} placeholders, e.g. "$composer/$title".
Existing files are never overwritten: the first free name of name.ext,
name1.ext, name2.ext... is used, and a file whose content already exists
under one of those names is left in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := rename.OptionsFromConfig(cfg)
			f := cmd.Flags()
			if f.Changed("template") {
				opts.Template = flags.template
			}
			if f.Changed("target") {
				target, err := filepath.Abs(flags.target)
				if err != nil {
					return fmt.Errorf("resolve target: %w", err)
				}
				opts.TargetDir = target
			}
			opts.Alphanum = opts.Alphanum || flags.alphanum
			opts.ASCII = opts.ASCII || flags.ascii
			opts.NoWhitespace = opts.NoWhitespace || flags.noWhitespace
			if f.Changed("skip-if-empty") {
				opts.SkipIfEmpty = flags.skipIfEmpty
			}
			opts.DryRun = ctx.flags.dryRun
			if strings.TrimSpace(opts.Template) == "" {
				return fmt.Errorf("rename template is empty")
			}

			engineOpts := []rename.Option{rename.WithOptions(opts), rename.WithLogger(logger)}
			if cfg.Journal.Enabled && !opts.DryRun {
				store, err := journal.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				engineOpts = append(engineOpts, rename.WithRecorder(store))
			}

			engine, err := rename.FromConfig(cfg, engineOpts...)
			if err != nil {
				return err
			}
			_, err = ctx.runBatch(cmd, args, nil, nil, batch.WithRenamer(engine))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.template, "template", "t", "", "Path template (default from config)")
	f.StringVarP(&flags.target, "target", "T", "", "Directory the template is resolved against (default: working directory)")
	f.BoolVarP(&flags.alphanum, "alphanum", "A", false, "Keep only letters, digits, underscores and whitespace")
	f.BoolVarP(&flags.ascii, "ascii", "a", false, "Transliterate values to ASCII")
	f.BoolVarP(&flags.noWhitespace, "no-whitespace", "n", false, "Replace whitespace with underscores")
	f.StringSliceVarP(&flags.skipIfEmpty, "skip-if-empty", "s", nil, "Leave files alone when one of these fields is empty")
	return cmd
}

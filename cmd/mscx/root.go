package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	config      string
	catchErrors bool
	backup      bool
	dryRun      bool
	diff        bool
	render      bool
	logFile     string
	logTemplate string
	glob        string
	verbose     int
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "mscx",
		Short:         "Edit and rename MuseScore files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.BoolVarP(&flags.catchErrors, "catch-errors", "e", false, "Report failing files and continue with the next one")
	pf.BoolVarP(&flags.backup, "backup", "b", false, "Copy every file to <name>_bak before editing")
	pf.BoolVarP(&flags.dryRun, "dry-run", "d", false, "Do not save or move anything")
	pf.BoolVarP(&flags.diff, "diff", "D", false, "Print a unified diff of every changed file")
	pf.BoolVarP(&flags.render, "render", "R", false, "Re-save every file through MuseScore")
	pf.StringVar(&flags.logFile, "log-file", "", "Append one line per processed file to this path")
	pf.StringVar(&flags.logTemplate, "log-template", "$title ($composer)", "Template of the --log-file line")
	pf.StringVar(&flags.glob, "glob", "", "Pattern selecting files inside directories (default from config)")
	pf.CountVarP(&flags.verbose, "verbose", "v", "Show more fields in change reports (repeatable)")

	rootCmd.AddCommand(newMetaCommand(ctx))
	rootCmd.AddCommand(newStyleCommand(ctx))
	rootCmd.AddCommand(newRenameCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newFieldsCommand())
	rootCmd.AddCommand(newJournalCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

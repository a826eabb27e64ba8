package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mscx/internal/batch"
	"mscx/internal/fields"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		all    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show <path>...",
		Short: "Print the fields of every score",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			verbosity := fields.DefaultVerbosity + ctx.flags.verbose
			handler := func(_ context.Context, reg *fields.Registry) error {
				if asJSON {
					return reg.Export(out, fields.FormatJSON)
				}
				snapshot := reg.Snapshot()
				var rows [][]string
				for _, f := range fields.All() {
					if f.Verbosity > verbosity {
						continue
					}
					value := snapshot[f.Name]
					if value == "" && !all {
						continue
					}
					rows = append(rows, []string{f.Name, value})
				}
				fmt.Fprintln(out, renderTitledTable(filepath.Base(reg.Score().Path), []string{"Field", "Value"}, rows, nil))
				return nil
			}
			_, err := ctx.runBatch(cmd, args, handler, func(o *batch.Options) {
				o.DryRun = true
			})
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include empty fields")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the fields as JSON")
	return cmd
}

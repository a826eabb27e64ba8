package main

import (
	"github.com/spf13/cobra"

	"mscx/internal/batch"
	"mscx/internal/fields"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <path>...",
		Short: "Write the fields of every score next to it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := fields.ParseFormat(format)
			if err != nil {
				return err
			}
			_, err = ctx.runBatch(cmd, args, nil, func(o *batch.Options) {
				o.Export = parsed
				o.DryRun = true
			})
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json or yaml")
	return cmd
}

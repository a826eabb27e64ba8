package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mscx/internal/deps"
	"mscx/internal/services/mscore"
)

const versionProbeTimeout = 30 * time.Second

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external programs mscx can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			for _, status := range statuses {
				switch {
				case status.Available:
					message := status.Path
					if version := probeVersion(cmd.Context(), status.Path); version != "" {
						message = fmt.Sprintf("%s (%s)", status.Path, version)
					}
					fmt.Fprintln(out, renderStatusLine(status.Name, statusOK, message, colorize))
				case status.Optional:
					fmt.Fprintln(out, renderStatusLine(status.Name, statusWarn, status.Detail+"; "+status.Description, colorize))
				default:
					fmt.Fprintln(out, renderStatusLine(status.Name, statusError, status.Detail, colorize))
				}
			}
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependencies missing", len(missing))
			}
			return nil
		},
	}
}

func probeVersion(ctx context.Context, binary string) string {
	client, err := mscore.New(binary, versionProbeTimeout)
	if err != nil {
		return ""
	}
	version, err := client.Version(ctx)
	if err != nil {
		return ""
	}
	return version
}

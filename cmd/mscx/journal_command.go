package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mscx/internal/fileutil"
	"mscx/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		runID  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent renames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !fileutil.Exists(cfg.JournalPath()) {
				fmt.Fprintln(out, "Journal is empty")
				return nil
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []journal.Entry
			if runID != "" {
				entries, err = store.Run(cmd.Context(), runID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Journal is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					string(e.Status),
					e.Source,
					e.Destination,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Time", "Status", "Source", "Destination"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show the renames of one batch run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mscx/internal/fields"
)

type fieldView struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	ReadOnly    bool     `json:"read_only"`
	Verbosity   int      `json:"verbosity"`
	Sources     []string `json:"sources,omitempty"`
	Description string   `json:"description"`
}

func newFieldsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "fields",
		Short:       "List the fields usable in templates and --set",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := fields.All()
			if asJSON {
				views := make([]fieldView, 0, len(catalog))
				for _, f := range catalog {
					views = append(views, fieldView{
						Name:        f.Name,
						Path:        f.Path,
						ReadOnly:    f.ReadOnly,
						Verbosity:   f.Verbosity,
						Sources:     f.Sources(),
						Description: f.Description,
					})
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			rows := make([][]string, 0, len(catalog))
			for _, f := range catalog {
				rows = append(rows, []string{f.Name, yesNo(f.ReadOnly), strconv.Itoa(f.Verbosity), f.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Read-only", "Verbosity", "Description"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mscx/internal/batch"
	"mscx/internal/fields"
)

type metaOptions struct {
	set              []string
	clean            string
	distributeFrom   []string
	distributeFormat string
	json             bool
}

func newMetaCommand(ctx *commandContext) *cobra.Command {
	opts := &metaOptions{}
	cmd := &cobra.Command{
		Use:   "meta <path>...",
		Short: "Edit metadata fields",
		Long: `Edit metadata fields of every score.

Edits run in this order: --clean, --distribute-from, --set. Values given to
--set may reference other fields, e.g. --set "title=$composer: $title".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := opts.handler()
			if err != nil {
				return err
			}
			_, err = ctx.runBatch(cmd, args, handler, func(b *batch.Options) {
				if opts.json {
					b.Export = fields.FormatJSON
				}
			})
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&opts.set, "set", "s", nil, "Set a field (name=value, repeatable)")
	cmd.Flags().StringVar(&opts.clean, "clean", "", `Clear fields ("all" or a comma separated list)`)
	cmd.Flags().StringSliceVar(&opts.distributeFrom, "distribute-from", nil, "Fields whose value is split by --distribute-format")
	cmd.Flags().StringVar(&opts.distributeFormat, "distribute-format", "", `Pattern such as "$title - $composer"`)
	cmd.Flags().BoolVarP(&opts.json, "json", "j", false, "Write the fields to <name>.json next to each score")
	return cmd
}

type assignment struct {
	name, value string
}

func (o *metaOptions) handler() (batch.Handler, error) {
	var sets []assignment
	for _, raw := range o.set {
		name, value, err := splitAssignment(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := fields.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %s", fields.ErrUnknownField, name)
		}
		sets = append(sets, assignment{name, value})
	}
	if (len(o.distributeFrom) > 0) != (strings.TrimSpace(o.distributeFormat) != "") {
		return nil, errors.New("--distribute-from and --distribute-format must be used together")
	}

	return func(_ context.Context, reg *fields.Registry) error {
		if strings.TrimSpace(o.clean) != "" {
			if err := reg.Clean(o.clean); err != nil {
				return err
			}
		}
		if len(o.distributeFrom) > 0 {
			if err := reg.Distribute(o.distributeFrom, o.distributeFormat); err != nil {
				return err
			}
		}
		for _, a := range sets {
			if err := reg.Set(a.name, a.value); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

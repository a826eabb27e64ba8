package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mscx/internal/fields"
	"mscx/internal/score"
)

type styleOptions struct {
	set               []string
	margin            float64
	pageSize          string
	textFont          string
	titleFont         string
	musicalSymbolFont string
	musicalTextFont   string
	importPath        string
	list              bool
	textStyles        []string
}

func newStyleCommand(ctx *commandContext) *cobra.Command {
	opts := &styleOptions{}
	cmd := &cobra.Command{
		Use:   "style <path>...",
		Short: "Edit layout and style values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := opts.edits(cmd.Flags().Changed("margin"))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			handler := func(_ context.Context, reg *fields.Registry) error {
				st := reg.Score().Style()
				for _, edit := range edits {
					if err := edit(st); err != nil {
						return err
					}
				}
				if opts.list {
					return printStyle(out, reg.Score())
				}
				return nil
			}
			_, err = ctx.runBatch(cmd, args, handler, nil)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.set, "set", "s", nil, "Set a style value (name=value, repeatable)")
	flags.Float64VarP(&opts.margin, "margin", "m", 0, "Set every page margin (inches)")
	flags.StringVarP(&opts.pageSize, "page-size", "p", "", `Page size: "a4", "letter" or WIDTHxHEIGHT in inches`)
	flags.StringVar(&opts.textFont, "text-font", "", "Font family of all text styles")
	flags.StringVar(&opts.titleFont, "title-font", "", "Font family of title and subtitle")
	flags.StringVar(&opts.musicalSymbolFont, "musical-symbol-font", "", "Musical symbol font")
	flags.StringVar(&opts.musicalTextFont, "musical-text-font", "", "Musical text font")
	flags.StringVar(&opts.importPath, "import", "", "Replace the style with the one of an .mss file")
	flags.BoolVarP(&opts.list, "list", "l", false, "Print every style value")
	flags.StringArrayVar(&opts.textStyles, "text-style", nil, `Set a text style property (Name:key=value, version 2 only)`)
	return cmd
}

type styleEdit func(*score.Style) error

// edits turns the flags into ordered style edits. The import runs first so
// the other flags refine the imported style.
func (o *styleOptions) edits(marginSet bool) ([]styleEdit, error) {
	var edits []styleEdit
	if path := strings.TrimSpace(o.importPath); path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(st *score.Style) error { return st.LoadFile(abs) })
	}
	for _, raw := range o.set {
		name, value, err := splitAssignment(raw)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(st *score.Style) error { return st.Set(name, value) })
	}
	if p := strings.TrimSpace(o.pageSize); p != "" {
		edit, err := pageSizeEdit(p)
		if err != nil {
			return nil, err
		}
		edits = append(edits, edit)
	}
	if marginSet {
		margin := o.margin
		edits = append(edits, func(st *score.Style) error { return st.SetAllMargins(margin) })
	}
	fonts := []struct {
		value string
		apply func(*score.Style, string) error
	}{
		{o.textFont, (*score.Style).SetTextFont},
		{o.titleFont, (*score.Style).SetTitleFont},
		{o.musicalSymbolFont, (*score.Style).SetMusicalSymbolFont},
		{o.musicalTextFont, (*score.Style).SetMusicalTextFont},
	}
	for _, f := range fonts {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		value, apply := f.value, f.apply
		edits = append(edits, func(st *score.Style) error { return apply(st, value) })
	}
	for _, raw := range o.textStyles {
		name, rest, ok := strings.Cut(raw, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("expected Name:key=value, got %q", raw)
		}
		key, value, err := splitAssignment(rest)
		if err != nil {
			return nil, err
		}
		styleName := strings.TrimSpace(name)
		edits = append(edits, func(st *score.Style) error {
			return st.SetTextStyle(styleName, map[string]string{key: value})
		})
	}
	return edits, nil
}

func pageSizeEdit(value string) (styleEdit, error) {
	if w, h, ok := strings.Cut(strings.ToLower(value), "x"); ok {
		width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
		if err != nil {
			return nil, fmt.Errorf("page width %q: %w", w, err)
		}
		height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err != nil {
			return nil, fmt.Errorf("page height %q: %w", h, err)
		}
		return func(st *score.Style) error { return st.SetPageSize(width, height) }, nil
	}
	return func(st *score.Style) error { return st.SetPageFormat(value) }, nil
}

func printStyle(w io.Writer, sc *score.Score) error {
	if !sc.Parsed() {
		return nil
	}
	st := sc.Style()
	values := st.Values()
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v.Name, v.Value})
	}
	title := fmt.Sprintf("%s (%s style)", filepath.Base(sc.Path), sc.StorageName())
	fmt.Fprintln(w, renderTitledTable(title, []string{"Name", "Value"}, rows, nil))
	if spatium, err := st.Spatium(); err == nil {
		fmt.Fprintf(w, "Spatium: %.2f mm\n", spatium)
	}

	if sc.VersionMajor == 2 {
		names, err := st.TextStyleNames()
		if err != nil {
			return err
		}
		if len(names) > 0 {
			fmt.Fprintf(w, "Text styles: %s\n", strings.Join(names, ", "))
		}
	}
	return nil
}

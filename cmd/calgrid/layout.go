package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"calgrid/internal/render"
	"calgrid/internal/view"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	date    string // anchor date, YYYY-MM-DD; empty means today
	view    string // overrides the configured view kind
	json    bool   // print JSON instead of the text grid
	noColor bool   // disable terminal styling
	width   int    // column width in cells
}

func newLayoutCmd(root *rootOpts) *cobra.Command {
	opts := layoutOpts{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Build the layout once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if opts.view != "" {
				if _, err := view.ParseKind(opts.view); err != nil {
					return err
				}
				cfg.View = opts.view
			}

			b, err := newBuilder(cfg)
			if err != nil {
				return err
			}

			anchor := time.Now().In(b.Location())
			if opts.date != "" {
				anchor, err = time.ParseInLocation(time.DateOnly, opts.date, b.Location())
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", opts.date)
				}
			}

			snap, err := b.Build(cmd.Context(), anchor)
			if err != nil {
				return err
			}

			if opts.json {
				return render.JSON(cmd.OutOrStdout(), snap)
			}
			return render.Text(cmd.OutOrStdout(), snap, render.TextOptions{
				ColumnWidth: opts.width,
				NoColor:     opts.noColor,
			})
		},
	}

	cmd.Flags().StringVarP(&opts.date, "date", "d", "", "anchor date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&opts.view, "view", "", "view kind: day, week, month, hourly")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colors")
	cmd.Flags().IntVar(&opts.width, "width", 0, "column width in cells")
	return cmd
}

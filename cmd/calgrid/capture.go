package main

import (
	"github.com/spf13/cobra"

	"calgrid/internal/capture"
)

func newCaptureCmd(root *rootOpts) *cobra.Command {
	var (
		url, out      string
		width, height int
		mono, planes  bool
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Screenshot the HTML grid with headless Chromium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			opts := capture.OptionsFromConfig(cfg)
			if url != "" {
				opts.URL = url
			}
			if out != "" {
				opts.OutputPath = out
			}
			if width > 0 {
				opts.Width = width
			}
			if height > 0 {
				opts.Height = height
			}
			if mono {
				opts.Panel.Mono = true
			}
			if planes {
				opts.Panel.Planes = true
			}
			return capture.CapturePNG(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "page to capture (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG path (default from config)")
	cmd.Flags().IntVar(&width, "width", 0, "viewport width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "viewport height in pixels")
	cmd.Flags().BoolVar(&mono, "mono", false, "quantize to white, black and red")
	cmd.Flags().BoolVar(&planes, "planes", false, "also write packed 1bpp e-paper planes")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	appLog "calgrid/internal/log"
	"calgrid/internal/view"
	"calgrid/internal/web"
)

func newServeCmd(root *rootOpts) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout over HTTP and keep it refreshed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			// --listen overrides the config file if provided.
			if listen != "" {
				cfg.Listen = listen
			}

			b, err := newBuilder(cfg)
			if err != nil {
				return err
			}
			refresher := view.NewRefresher(b, view.RefresherOptions{
				ActiveDelay: cfg.ActiveDelay(),
				IdleDelay:   cfg.IdleDelay(),
				Cron:        cfg.RefreshCron,
			})
			srv := web.NewServer(cfg, refresher)

			appLog.Info("calgrid starting", "version", version, "listen", cfg.Listen, "view", cfg.View)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return refresher.Run(ctx) })
			g.Go(func() error { return srv.ListenAndServe(ctx) })
			err = g.Wait()

			appLog.Info("calgrid exiting")
			return err
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"calgrid/internal/config"
	"calgrid/internal/ics"
	appLog "calgrid/internal/log"
	"calgrid/internal/view"
)

const defaultConfigPath = "./calgrid.yaml"

// rootOpts holds the flags shared by every command.
type rootOpts struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "calgrid",
		Short:        "calgrid lays out calendar feeds as a line-packed grid",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				appLog.SetLevel(appLog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to config file (.yaml or .toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newLayoutCmd(opts))
	root.AddCommand(newCaptureCmd(opts))

	return root
}

// loadConfig reads the config file and applies its log level unless
// --verbose already asked for debug output.
func (o *rootOpts) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", o.configPath, err)
	}
	if !o.verbose {
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	}
	appLog.Debug("effective config",
		"config_path", o.configPath,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"view", cfg.View,
		"order", cfg.Order,
		"refresh", cfg.RefreshCron,
		"ics_count", len(cfg.ICS),
	)
	return cfg, nil
}

// newBuilder wires the ICS collector into a view builder.
func newBuilder(cfg *config.Config) (*view.Builder, error) {
	opts, err := view.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	collector := ics.NewCollector(
		ics.NewFetcher(cfg.CacheDir),
		ics.SourcesFromConfig(cfg.ICS),
		opts.Location,
		cfg.MaxOccurrencesPerEvent,
	)
	return view.NewBuilder(collector, opts), nil
}

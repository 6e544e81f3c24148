package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/regionedit/cmd/batch"
	"github.com/tphakala/regionedit/cmd/configcmd"
	"github.com/tphakala/regionedit/cmd/crossfade"
	"github.com/tphakala/regionedit/cmd/drag"
	"github.com/tphakala/regionedit/cmd/probe"
	"github.com/tphakala/regionedit/cmd/ripple"
	"github.com/tphakala/regionedit/cmd/snap"
	"github.com/tphakala/regionedit/cmd/split"
	"github.com/tphakala/regionedit/internal/buildinfo"
	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/conf"
	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability"
	"github.com/tphakala/regionedit/internal/telemetry"
)

const telemetryFlushTimeout = 2 * time.Second

// flagKeys maps persistent flags to the settings they override.
var flagKeys = map[string]string{
	"debug":      "debug",
	"metrics":    "metrics.enabled",
	"zoom":       "timeline.zoom",
	"scroll":     "timeline.scroll_x",
	"bpm":        "grid.bpm",
	"resolution": "grid.resolution",
	"snap":       "gesture.snap",
}

// RootCommand creates and returns the root command
func RootCommand(ctx *cli.Context) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "regionedit",
		Short:         "Non-destructive audio region editor",
		Long:          `Edit regions of a timeline file: split, ripple delete, batch edits, pointer drags and crossfade detection.`,
		Version:       buildinfo.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, &configPath); err != nil {
		// Flag names are static, a binding failure is a programming error.
		panic(err)
	}

	rootCmd.AddCommand(
		split.Command(ctx),
		ripple.Command(ctx),
		crossfade.Command(ctx),
		snap.Command(ctx),
		batch.Command(ctx),
		drag.Command(ctx),
		probe.Command(ctx),
		configcmd.Command(ctx),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initialize(ctx, configPath); err != nil {
			return err
		}
		logger.Global().Module("main").WithContext(cmd.Context()).
			Debug("running command", logger.String("command", cmd.CommandPath()))
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if ctx.Settings.Metrics.Enabled {
			return ctx.Metrics.WriteText(ctx.Out)
		}
		return nil
	}

	return rootCmd
}

// Execute runs the root command with args and releases logging and
// telemetry afterwards, also when the command failed.
func Execute(runCtx context.Context, ctx *cli.Context, args []string) error {
	rootCmd := RootCommand(ctx)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(ctx.Out)

	// Every log line of one invocation carries the same trace id.
	err := rootCmd.ExecuteContext(logger.WithTraceID(runCtx, uuid.NewString()))
	if closeErr := ctx.Close(); err == nil {
		err = closeErr
	}
	return err
}

// initialize loads settings and sets up logging, metrics and telemetry
// before any subcommand runs.
func initialize(ctx *cli.Context, configPath string) error {
	settings, err := conf.Load(configPath)
	if err != nil {
		return err
	}
	if settings.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)
	ctx.OnClose(central.Close)

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	enabled, err := telemetry.Init(settings.Telemetry, buildinfo.Current().Version())
	if err != nil {
		// Telemetry is optional; a bad DSN must not block editing.
		central.Module("main").Warn("telemetry disabled", logger.Error(err))
	}
	if enabled {
		ctx.OnClose(func() error {
			telemetry.Flush(telemetryFlushTimeout)
			return nil
		})
	}

	ctx.Settings = settings
	ctx.Metrics = m
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configPath *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(configPath, "config", "c", "", "Path to a YAML config file")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.Bool("metrics", false, "Print Prometheus metrics after the command")
	flags.Float64("zoom", 100, "Timeline zoom in pixels per second")
	flags.Float64("scroll", 0, "Horizontal scroll offset in pixels")
	flags.Float64("bpm", 120, "Tempo in beats per minute")
	flags.String("resolution", "adaptive", "Grid resolution: 1/4, 1/8, 1/16, 1/32, 1/64 or adaptive")
	flags.Bool("snap", false, "Snap moved regions and split points to the grid")

	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}

	return nil
}

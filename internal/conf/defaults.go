// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/regionedit/internal/logger"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("timeline.zoom", 100.0)
	viper.SetDefault("timeline.min_zoom", 1.0)
	viper.SetDefault("timeline.max_zoom", 2000.0)
	viper.SetDefault("timeline.scroll_x", 0.0)

	viper.SetDefault("gesture.edge_tolerance_px", 8.0)
	viper.SetDefault("gesture.fade_handle_px", 20.0)
	viper.SetDefault("gesture.min_duration", 0.1)
	viper.SetDefault("gesture.snap", false)

	viper.SetDefault("grid.bpm", 120.0)
	viper.SetDefault("grid.beats_per_bar", 4)
	viper.SetDefault("grid.beat_unit", 4)
	viper.SetDefault("grid.resolution", "adaptive")

	viper.SetDefault("crossfade.same_track_only", true)

	viper.SetDefault("sources.cache_ttl", 10*time.Minute)
	viper.SetDefault("sources.probe_workers", 4)

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.max_size", logger.DefaultMaxSize)
	viper.SetDefault("logging.file_output.max_age", logger.DefaultMaxAge)
	viper.SetDefault("logging.file_output.max_rotated_files", logger.DefaultMaxRotatedFiles)
	viper.SetDefault("logging.file_output.compress", false)
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")

	viper.SetDefault("metrics.enabled", false)
}

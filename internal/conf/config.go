// Package conf provides configuration management for regionedit.
package conf

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/regionedit/internal/logger"
)

// EnvPrefix is prepended to environment overrides, e.g. REGIONEDIT_GRID_BPM.
const EnvPrefix = "REGIONEDIT"

// TimelineSettings holds the default viewport of the timeline.
type TimelineSettings struct {
	Zoom    float64 `mapstructure:"zoom" yaml:"zoom"`         // pixels per second
	MinZoom float64 `mapstructure:"min_zoom" yaml:"min_zoom"` // lower clamp applied by callers
	MaxZoom float64 `mapstructure:"max_zoom" yaml:"max_zoom"` // upper clamp applied by callers
	ScrollX float64 `mapstructure:"scroll_x" yaml:"scroll_x"` // horizontal scroll in pixels
}

// GestureSettings tunes pointer classification and drag behaviour.
type GestureSettings struct {
	EdgeTolerancePx float64 `mapstructure:"edge_tolerance_px" yaml:"edge_tolerance_px"`
	FadeHandlePx    float64 `mapstructure:"fade_handle_px" yaml:"fade_handle_px"`
	MinDuration     float64 `mapstructure:"min_duration" yaml:"min_duration"` // seconds
	Snap            bool    `mapstructure:"snap" yaml:"snap"`                 // snap moved regions to the grid
}

// GridSettings defines tempo and quantization.
type GridSettings struct {
	BPM         float64 `mapstructure:"bpm" yaml:"bpm"`
	BeatsPerBar int     `mapstructure:"beats_per_bar" yaml:"beats_per_bar"`
	BeatUnit    int     `mapstructure:"beat_unit" yaml:"beat_unit"`
	Resolution  string  `mapstructure:"resolution" yaml:"resolution"` // "1/4".."1/64" or "adaptive"
}

// CrossfadeSettings controls crossfade detection scope.
type CrossfadeSettings struct {
	SameTrackOnly bool `mapstructure:"same_track_only" yaml:"same_track_only"`
}

// SourceSettings controls audio source metadata probing.
type SourceSettings struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	ProbeWorkers int           `mapstructure:"probe_workers" yaml:"probe_workers"`
}

// TelemetrySettings enables optional error reporting to Sentry.
type TelemetrySettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// MetricsSettings controls the Prometheus text dump after a command.
type MetricsSettings struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Settings contains all configuration options for regionedit.
type Settings struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`

	Timeline  TimelineSettings     `mapstructure:"timeline" yaml:"timeline"`
	Gesture   GestureSettings      `mapstructure:"gesture" yaml:"gesture"`
	Grid      GridSettings         `mapstructure:"grid" yaml:"grid"`
	Crossfade CrossfadeSettings    `mapstructure:"crossfade" yaml:"crossfade"`
	Sources   SourceSettings       `mapstructure:"sources" yaml:"sources"`
	Logging   logger.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetrySettings    `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsSettings      `mapstructure:"metrics" yaml:"metrics"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// GetLogger returns the config package logger scoped to the config module.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}

// Load reads defaults, the optional YAML file at configPath and environment
// overrides into a validated Settings. An empty configPath skips the file.
func Load(configPath string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configPath); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper registers defaults and environment bindings, then reads the
// config file if one was given.
func initViper(configPath string) error {
	setDefaultConfig()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := bindEnvVars(); err != nil {
		GetLogger().Warn("environment overrides rejected", logger.Error(err))
	}

	if configPath == "" {
		return nil
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	GetLogger().Debug("config file loaded", logger.String("path", viper.ConfigFileUsed()))
	return nil
}

// GetSettings returns the most recently loaded settings, or nil.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// WriteYAML renders settings as YAML.
func WriteYAML(w io.Writer, settings *Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return enc.Close()
}

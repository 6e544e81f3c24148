package conf

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

const maxProbeWorkers = 64

// validResolutions lists accepted grid.resolution values.
var validResolutions = []string{"1/4", "1/8", "1/16", "1/32", "1/64", "adaptive"}

func isValidResolution(value string) bool {
	return slices.Contains(validResolutions, strings.ToLower(strings.TrimSpace(value)))
}

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateTimelineSettings(&settings.Timeline)...)
	ve.Errors = append(ve.Errors, validateGestureSettings(&settings.Gesture)...)
	ve.Errors = append(ve.Errors, validateGridSettings(&settings.Grid)...)
	ve.Errors = append(ve.Errors, validateSourceSettings(&settings.Sources)...)
	ve.Errors = append(ve.Errors, validateLoggingSettings(settings)...)

	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		ve.Errors = append(ve.Errors, "telemetry is enabled but no DSN is configured")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateTimelineSettings(t *TimelineSettings) []string {
	var errs []string

	if t.MinZoom <= 0 {
		errs = append(errs, "timeline min_zoom must be greater than 0")
	}
	if t.MaxZoom < t.MinZoom {
		errs = append(errs, "timeline max_zoom must not be below min_zoom")
	}
	if t.Zoom < t.MinZoom || t.Zoom > t.MaxZoom {
		errs = append(errs, fmt.Sprintf("timeline zoom must be between %g and %g", t.MinZoom, t.MaxZoom))
	}
	if t.ScrollX < 0 {
		errs = append(errs, "timeline scroll_x must not be negative")
	}

	return errs
}

func validateGestureSettings(g *GestureSettings) []string {
	var errs []string

	if g.EdgeTolerancePx < 0 {
		errs = append(errs, "gesture edge_tolerance_px must not be negative")
	}
	if g.FadeHandlePx < 0 {
		errs = append(errs, "gesture fade_handle_px must not be negative")
	}
	if g.MinDuration <= 0 {
		errs = append(errs, "gesture min_duration must be greater than 0")
	}

	return errs
}

func validateGridSettings(g *GridSettings) []string {
	var errs []string

	if g.BPM <= 0 {
		errs = append(errs, "grid bpm must be greater than 0")
	}
	if g.BeatsPerBar < 1 {
		errs = append(errs, "grid beats_per_bar must be at least 1")
	}
	if g.BeatUnit < 1 || bits.OnesCount(uint(g.BeatUnit)) != 1 {
		errs = append(errs, "grid beat_unit must be a power of two")
	}
	if !isValidResolution(g.Resolution) {
		errs = append(errs, fmt.Sprintf("grid resolution must be one of %s", strings.Join(validResolutions, ", ")))
	}

	return errs
}

func validateSourceSettings(s *SourceSettings) []string {
	var errs []string

	if s.CacheTTL < 0 {
		errs = append(errs, "sources cache_ttl must not be negative")
	}
	if s.ProbeWorkers < 1 || s.ProbeWorkers > maxProbeWorkers {
		errs = append(errs, fmt.Sprintf("sources probe_workers must be between 1 and %d", maxProbeWorkers))
	}

	return errs
}

func validateLoggingSettings(settings *Settings) []string {
	var errs []string

	checkLevel := func(name, level string) {
		if level != "" && !slices.Contains(validLogLevels, level) {
			errs = append(errs, fmt.Sprintf("logging %s must be one of %s", name, strings.Join(validLogLevels, ", ")))
		}
	}

	l := &settings.Logging
	checkLevel("default_level", l.DefaultLevel)
	if l.Console != nil {
		checkLevel("console.level", l.Console.Level)
	}
	if l.FileOutput != nil {
		checkLevel("file_output.level", l.FileOutput.Level)
		if l.FileOutput.Enabled && l.FileOutput.Path == "" {
			errs = append(errs, "logging file_output.path is required when file output is enabled")
		}
	}
	for module, level := range l.ModuleLevels {
		checkLevel("module_levels."+module, level)
	}

	return errs
}

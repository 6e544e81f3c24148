// env.go - Environment variable validation for regionedit
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns the explicitly validated environment bindings.
// Every other key is still reachable through AutomaticEnv.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "REGIONEDIT_DEBUG", validateEnvBool},
		{"timeline.zoom", "REGIONEDIT_TIMELINE_ZOOM", validateEnvPositiveFloat},
		{"grid.bpm", "REGIONEDIT_GRID_BPM", validateEnvPositiveFloat},
		{"grid.resolution", "REGIONEDIT_GRID_RESOLUTION", validateEnvResolution},
		{"gesture.snap", "REGIONEDIT_GESTURE_SNAP", validateEnvBool},
		{"sources.probe_workers", "REGIONEDIT_SOURCES_PROBE_WORKERS", validateEnvWorkers},
		{"telemetry.enabled", "REGIONEDIT_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.dsn", "REGIONEDIT_TELEMETRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

func validateEnvPositiveFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	if f <= 0 {
		return fmt.Errorf("must be greater than 0, got %g", f)
	}
	return nil
}

func validateEnvResolution(value string) error {
	if !isValidResolution(value) {
		return fmt.Errorf("must be one of %s", strings.Join(validResolutions, ", "))
	}
	return nil
}

func validateEnvWorkers(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n < 1 || n > maxProbeWorkers {
		return fmt.Errorf("must be between 1 and %d, got %d", maxProbeWorkers, n)
	}
	return nil
}
